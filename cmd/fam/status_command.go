package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"famcontents/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend configuration and supported task kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				status := svc.Status(cmd.Context())
				if ctx.jsonOutput() {
					return writeJSON(cmd, status)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				if status.Configured {
					fmt.Fprintln(out, renderStatusLine("Backend", statusOK, status.Backend+" / "+status.Model, colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Backend", statusWarn, status.Backend+" not configured; fallback bodies only", colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Database", statusInfo, status.DatabasePath, colorize))
				fmt.Fprintln(out, renderStatusLine("Channels", statusInfo, strings.Join(status.Channels, ", "), colorize))
				fmt.Fprintln(out, renderStatusLine("Task kinds", statusInfo, strings.Join(status.Kinds, ", "), colorize))
				return nil
			})
		},
	}
}
