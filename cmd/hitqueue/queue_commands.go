package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hitqueue/internal/ipc"
)

const payloadPreviewWidth = 60

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage queued hits",
	}
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hits at the head of the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Peek(limit)
				if err != nil {
					return err
				}
				return printResult(ctx, cmd, resp, func() error {
					out := cmd.OutOrStdout()
					if len(resp.Hits) == 0 {
						fmt.Fprintln(out, "Queue is empty")
						return nil
					}
					rows := make([][]string, 0, len(resp.Hits))
					for i, h := range resp.Hits {
						rows = append(rows, []string{
							fmt.Sprintf("%d", i+1),
							h.ID,
							h.CreatedAt,
							previewPayload(h.Payload, payloadPreviewWidth),
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"#", "ID", "Created", "Payload"},
						rows,
						[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
					))
					return nil
				})
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of hits to show")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard every queued hit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Clear()
				if err != nil {
					return err
				}
				return printResult(ctx, cmd, resp, func() error {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d hit(s)\n", resp.Removed)
					return nil
				})
			})
		},
	}
}

// previewPayload collapses whitespace and truncates to width runes.
func previewPayload(payload string, width int) string {
	flat := strings.Join(strings.Fields(payload), " ")
	runes := []rune(flat)
	if width <= 0 || len(runes) <= width {
		return flat
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
