package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hitqueue/internal/api"
	"hitqueue/internal/ipc"
)

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check queue database health (schema, integrity, columns)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DatabaseHealth()
				if err != nil {
					return err
				}
				return printResult(ctx, cmd, resp, func() error {
					for _, line := range healthLines(resp) {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", line[0], line[1])
					}
					return nil
				})
			})
		},
	}
}

func healthLines(h *api.DatabaseHealth) [][2]string {
	lines := [][2]string{
		{"Database path", h.DBPath},
		{"Database exists", yesNo(h.DatabaseExists)},
		{"Readable", yesNo(h.DatabaseReadable)},
		{"Directory writable", yesNo(h.DirectoryWritable)},
		{"Schema version", strconv.Itoa(h.SchemaVersion)},
		{"hits table present", yesNo(h.TableExists)},
	}
	if len(h.ColumnsPresent) > 0 {
		lines = append(lines, [2]string{"Columns", sortedList(h.ColumnsPresent)})
	}
	missing := "none"
	if len(h.MissingColumns) > 0 {
		missing = sortedList(h.MissingColumns)
	}
	lines = append(lines,
		[2]string{"Missing columns", missing},
		[2]string{"Integrity check", yesNo(h.IntegrityCheck)},
		[2]string{"Total hits", strconv.Itoa(h.TotalItems)},
		[2]string{"Store resets", strconv.Itoa(h.Resets)},
	)
	if h.Error != "" {
		lines = append(lines, [2]string{"Error", h.Error})
	}
	return lines
}

func sortedList(values []string) string {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return strings.Join(sorted, ", ")
}
