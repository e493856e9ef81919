package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult writes v as JSON in --json mode and otherwise runs human.
func printResult(ctx *commandContext, cmd *cobra.Command, v any, human func() error) error {
	if ctx.JSONMode() {
		return writeJSON(cmd, v)
	}
	return human()
}
