package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hitqueue/internal/ipc"
)

func newSuspendCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "suspend",
		Short: "Pause delivery; queued hits are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Suspend()
				if err != nil {
					return err
				}
				return printResult(ctx, cmd, resp, func() error {
					fmt.Fprintf(cmd.OutOrStdout(), "Delivery %s\n", resp.State)
					return nil
				})
			})
		},
	}
}

func newResumeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume delivery (requires opted-in privacy status)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Resume()
				if err != nil {
					return err
				}
				return printResult(ctx, cmd, resp, func() error {
					out := cmd.OutOrStdout()
					if !resp.Resumed {
						fmt.Fprintf(out, "Delivery not resumed: %s\n", resp.Message)
						return nil
					}
					fmt.Fprintf(out, "Delivery resumed (%s)\n", resp.State)
					return nil
				})
			})
		},
	}
}

func newPrivacyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "privacy <opted-in|opted-out|unknown>",
		Short: "Set the privacy consent status",
		Long: "Set the privacy consent status.\n\n" +
			"opted-in starts delivery, unknown pauses it and keeps queued hits,\n" +
			"opted-out pauses it and discards every queued hit.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Privacy(args[0])
				if err != nil {
					return err
				}
				return printResult(ctx, cmd, resp, func() error {
					fmt.Fprintf(cmd.OutOrStdout(), "Privacy %s; delivery %s; %d hit(s) queued\n", resp.Status, resp.State, resp.Count)
					return nil
				})
			})
		},
	}
}
