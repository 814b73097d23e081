package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"famcontents/internal/api"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var material materialFlags
	var textFile string

	cmd := &cobra.Command{
		Use:   "generate <kind>",
		Short: "Run one generation task without storing the result",
		Long: "Run one generation task over the given material and print the body.\n" +
			"Kinds: x, instagram_feed, instagram_reels, note, line, analyze_materials,\n" +
			"extract_knowledge, proofread. Unknown kinds use the generic task.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				files, excerpts, err := material.readFiles(svc)
				if err != nil {
					return err
				}
				req := api.GenerateRequest{
					Title:        material.title,
					Summary:      material.summary,
					Files:        files,
					Excerpts:     excerpts,
					Direction:    material.direction,
					Tone:         material.tone,
					Instructions: material.instructions,
				}
				if strings.TrimSpace(textFile) != "" {
					data, err := os.ReadFile(textFile)
					if err != nil {
						return fmt.Errorf("read text file: %w", err)
					}
					req.Text = string(data)
				}
				resp, err := svc.Generate(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Kind:   %s\n", resp.Kind)
				fmt.Fprintf(out, "Source: %s\n", sourceLabel(resp.Source, resp.FailureReason))
				return writeBody(out, resp.Body)
			})
		},
	}
	material.register(cmd)
	cmd.Flags().StringVar(&textFile, "text-file", "", "File holding the text to proofread")
	return cmd
}
