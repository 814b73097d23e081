package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"famcontents/internal/api"
)

func newTaskCommand(ctx *commandContext) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect and override per-task model parameters",
	}
	taskCmd.AddCommand(newTaskListCommand(ctx))
	taskCmd.AddCommand(newTaskSetCommand(ctx))
	return taskCmd
}

func newTaskListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show effective model parameters for every task kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				resp, err := svc.ListTaskConfigs(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				rows := make([][]string, 0, len(resp.Items))
				for _, item := range resp.Items {
					rows = append(rows, []string{
						item.Kind,
						item.Effective.Model,
						strconv.FormatFloat(item.Effective.Temperature, 'f', -1, 64),
						strconv.Itoa(item.Effective.MaxOutputTokens),
						yesNo(item.Stored),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
					{header: "Kind"},
					{header: "Model"},
					{header: "Temperature", align: alignRight},
					{header: "Max Tokens", align: alignRight},
					{header: "Override"},
				}, rows))
				return nil
			})
		},
	}
}

func newTaskSetCommand(ctx *commandContext) *cobra.Command {
	var model string
	var temperature float64
	var maxTokens int

	cmd := &cobra.Command{
		Use:   "set <kind>",
		Short: "Store model parameter overrides for a task kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.TaskConfigRequest{Model: model, MaxOutputTokens: maxTokens}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temperature
			}
			return ctx.withService(cmd, func(svc *api.Service) error {
				view, err := svc.PutTaskConfig(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, view)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: model=%s temperature=%s max_output_tokens=%d\n",
					view.Kind,
					view.Effective.Model,
					strconv.FormatFloat(view.Effective.Temperature, 'f', -1, 64),
					view.Effective.MaxOutputTokens,
				)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Model name")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature (0-2)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Output token budget")
	return cmd
}
