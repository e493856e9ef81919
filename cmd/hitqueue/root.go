package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "hitqueue",
		Short:         "Control a running hitqueue daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.socket, "socket", "", "Path to the hitqueue daemon socket")
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.BoolVar(&flags.json, "json", false, "Print machine-readable JSON")

	rootCmd.AddCommand(
		newStatusCommand(ctx),
		newEnqueueCommand(ctx),
		newQueueCommand(ctx),
		newSuspendCommand(ctx),
		newResumeCommand(ctx),
		newPrivacyCommand(ctx),
		newPreflightCommand(ctx),
		newLogsCommand(ctx),
		newConfigCommand(ctx),
	)

	return rootCmd
}
