package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hitqueue/internal/ipc"
)

func newEnqueueCommand(ctx *commandContext) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "enqueue [payload]",
		Short: "Queue a hit payload for delivery",
		Long: "Queue a hit payload for delivery.\n\n" +
			"The payload comes from the argument, from --file, or from stdin when --file is \"-\".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, args, filePath)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Enqueue(payload)
				if err != nil {
					return err
				}
				return printResult(ctx, cmd, resp, func() error {
					if !resp.Accepted {
						return fmt.Errorf("hit not queued: %s", resp.Message)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Queued hit %s\n", resp.ID)
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read the payload from a file (\"-\" for stdin)")
	return cmd
}

func readPayload(cmd *cobra.Command, args []string, filePath string) (string, error) {
	filePath = strings.TrimSpace(filePath)
	switch {
	case len(args) == 1 && filePath != "":
		return "", errors.New("pass either a payload argument or --file, not both")
	case len(args) == 1:
		return args[0], nil
	case filePath == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read payload file: %w", err)
		}
		return string(data), nil
	default:
		return "", errors.New("payload required: pass it as an argument or with --file")
	}
}
