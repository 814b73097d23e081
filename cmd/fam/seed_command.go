package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"famcontents/internal/api"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <yaml-file>",
		Short: "Import content items and task overrides from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()
			seed, err := api.DecodeSeed(f)
			if err != nil {
				return err
			}
			return ctx.withService(cmd, func(svc *api.Service) error {
				resp, err := svc.Seed(cmd.Context(), seed)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d content item(s) and %d task override(s)\n", len(resp.Contents), len(resp.TaskConfigs))
				return nil
			})
		},
	}
}
