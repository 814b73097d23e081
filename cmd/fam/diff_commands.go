package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"famcontents/internal/api"
	"famcontents/internal/textdiff"
)

type diffFormat string

const (
	diffAuto    diffFormat = "auto"
	diffANSI    diffFormat = "ansi"
	diffHTML    diffFormat = "html"
	diffMarkers diffFormat = "markers"
)

func newDiffCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "diff <original-file> <modified-file>",
		Short: "Highlight sentences the modified text adds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read original: %w", err)
			}
			modified, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read modified: %w", err)
			}
			return ctx.withService(cmd, func(svc *api.Service) error {
				resp := svc.Diff(api.DiffRequest{Original: string(original), Modified: string(modified)})
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				return writeSegments(cmd.OutOrStdout(), resp.Segments, diffFormat(format))
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(diffAuto), "Output format: auto, ansi, html, markers")
	return cmd
}

func newProofreadCommand(ctx *commandContext) *cobra.Command {
	var title string
	var format string

	cmd := &cobra.Command{
		Use:   "proofread <file>",
		Short: "Proofread a text file and highlight the corrections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read text: %w", err)
			}
			return ctx.withService(cmd, func(svc *api.Service) error {
				resp, err := svc.Proofread(cmd.Context(), api.GenerateRequest{Title: title, Text: string(text)})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Source: %s\n\n", sourceLabel(resp.Result.Source, resp.Result.FailureReason))
				if err := writeSegments(out, resp.Diff.Segments, diffFormat(format)); err != nil {
					return err
				}
				fmt.Fprintln(out)
				return writeBody(out, resp.Result.Body)
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Subject title for context")
	cmd.Flags().StringVar(&format, "format", string(diffAuto), "Highlight format: auto, ansi, html, markers")
	return cmd
}

func writeSegments(out io.Writer, segments []textdiff.Segment, format diffFormat) error {
	if format == diffAuto || format == "" {
		format = diffMarkers
		if shouldColorize(out) {
			format = diffANSI
		}
	}
	var rendered string
	switch format {
	case diffANSI:
		rendered = textdiff.RenderANSI(segments)
	case diffHTML:
		rendered = textdiff.RenderHTML(segments)
	case diffMarkers:
		rendered = renderMarkers(segments)
	default:
		return fmt.Errorf("unknown format %q (want auto, ansi, html, or markers)", format)
	}
	if !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	_, err := io.WriteString(out, rendered)
	return err
}

// renderMarkers wraps added runs in {+ +}, leaving newlines outside the markers.
func renderMarkers(segments []textdiff.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind != textdiff.KindAdded {
			b.WriteString(seg.Text)
			continue
		}
		for i, line := range strings.Split(seg.Text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString("{+" + line + "+}")
			}
		}
	}
	return b.String()
}
