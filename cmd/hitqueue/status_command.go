package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hitqueue/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, privacy and delivery status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				return printResult(ctx, cmd, status, func() error {
					out := cmd.OutOrStdout()
					colorize := shouldColorize(out)
					sched := status.Scheduler

					lines := renderSectionHeader("Daemon", colorize)
					daemonKind, daemonMsg := statusOK, fmt.Sprintf("running (pid %d)", status.PID)
					if !status.Running {
						daemonKind, daemonMsg = statusError, "stopped"
					}
					lines = append(lines,
						renderStatusLine("Daemon", daemonKind, daemonMsg, colorize),
						renderStatusLine("Privacy", privacyKind(status.Privacy), status.Privacy, colorize),
						renderValueLine("Endpoint", fallback(status.Endpoint, "(not set)")),
						renderValueLine("API", fallback(status.APIAddress, "(disabled)")),
						renderValueLine("Database", status.QueueDBPath),
					)
					if status.StoreResets > 0 {
						lines = append(lines, renderStatusLine("Store resets", statusWarn, strconv.Itoa(status.StoreResets), colorize))
					}

					lines = append(lines, "")
					lines = append(lines, renderSectionHeader("Queue "+sched.Queue, colorize)...)
					lines = append(lines,
						renderStatusLine("Scheduler", schedulerKind(sched.State, sched.RetryPending), sched.State, colorize),
						renderValueLine("Pending", strconv.Itoa(sched.Pending)),
					)
					if sched.InFlight {
						lines = append(lines, renderValueLine("In flight", sched.InFlightID))
					}
					if sched.RetryPending {
						lines = append(lines, renderValueLine("Next retry", fmt.Sprintf("%s (attempt %d)", sched.NextRetry, sched.Attempts+1)))
					}
					lines = append(lines,
						renderValueLine("Delivered", strconv.FormatUint(sched.Deliveries, 10)),
						renderValueLine("Failed", strconv.FormatUint(sched.Failures, 10)),
					)
					if sched.LastDelivery != "" {
						lines = append(lines, renderValueLine("Last delivery", sched.LastDelivery))
					}
					if sched.LastFailure != "" {
						lines = append(lines, renderValueLine("Last failure", sched.LastFailure))
					}
					_, err := fmt.Fprintln(out, strings.Join(lines, "\n"))
					return err
				})
			})
		},
	}
}

func fallback(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
