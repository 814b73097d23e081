package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"famcontents/internal/api"
)

func newContentCommand(ctx *commandContext) *cobra.Command {
	contentCmd := &cobra.Command{
		Use:   "content",
		Short: "Manage content items",
	}
	contentCmd.AddCommand(newContentAddCommand(ctx))
	contentCmd.AddCommand(newContentListCommand(ctx))
	contentCmd.AddCommand(newContentShowCommand(ctx))
	contentCmd.AddCommand(newContentDeleteCommand(ctx))
	return contentCmd
}

func newContentAddCommand(ctx *commandContext) *cobra.Command {
	var material materialFlags
	var channels []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a content item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				files, excerpts, err := material.readFiles(svc)
				if err != nil {
					return err
				}
				view, err := svc.CreateContent(cmd.Context(), api.ContentRequest{
					Title:        material.title,
					Summary:      material.summary,
					Channels:     channels,
					Files:        files,
					Excerpts:     excerpts,
					Direction:    material.direction,
					Tone:         material.tone,
					Instructions: material.instructions,
				})
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, view)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created content %s (%s)\n", view.ID, strings.Join(view.Channels, ", "))
				return nil
			})
		},
	}
	material.register(cmd)
	cmd.Flags().StringSliceVar(&channels, "channel", nil, "Target channel (repeatable): x, instagram_feed, instagram_reels, note, line")
	return cmd
}

func newContentListCommand(ctx *commandContext) *cobra.Command {
	var channel string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				resp, err := svc.ListContents(cmd.Context(), channel, limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Items) == 0 {
					fmt.Fprintln(out, "No content items")
					return nil
				}
				rows := make([][]string, 0, len(resp.Items))
				for _, item := range resp.Items {
					rows = append(rows, []string{
						item.ID,
						item.Title,
						strings.Join(item.Channels, ", "),
						formatDisplayTime(item.CreatedAt),
					})
				}
				fmt.Fprintln(out, renderTable([]column{
					{header: "ID"},
					{header: "Title", maxWidth: 40},
					{header: "Channels", maxWidth: 30},
					{header: "Created"},
				}, rows))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "Only items targeting this channel")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of items")
	return cmd
}

func newContentShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				view, err := svc.GetContent(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:           %s\n", view.ID)
				fmt.Fprintf(out, "Title:        %s\n", view.Title)
				fmt.Fprintf(out, "Summary:      %s\n", orDash(view.Summary))
				fmt.Fprintf(out, "Channels:     %s\n", strings.Join(view.Channels, ", "))
				fmt.Fprintf(out, "Tone:         %s\n", orDash(view.Tone))
				fmt.Fprintf(out, "Direction:    %s\n", orDash(view.Direction))
				fmt.Fprintf(out, "Instructions: %s\n", orDash(view.Instructions))
				fmt.Fprintf(out, "Created:      %s\n", formatDisplayTime(view.CreatedAt))
				fmt.Fprintf(out, "Updated:      %s\n", formatDisplayTime(view.UpdatedAt))
				if len(view.Files) > 0 {
					rows := make([][]string, 0, len(view.Files))
					for _, f := range view.Files {
						rows = append(rows, []string{f.Name, f.Category})
					}
					fmt.Fprintln(out, renderTable([]column{{header: "File"}, {header: "Category"}}, rows))
				}
				if len(view.VariantCounts) > 0 {
					statuses := make([]string, 0, len(view.VariantCounts))
					for status := range view.VariantCounts {
						statuses = append(statuses, status)
					}
					slices.Sort(statuses)
					colorize := shouldColorize(out)
					rows := make([][]string, 0, len(statuses))
					for _, status := range statuses {
						rows = append(rows, []string{
							variantStatusLabel(status, false, false, colorize),
							strconv.Itoa(view.VariantCounts[status]),
						})
					}
					fmt.Fprintln(out, renderTable([]column{{header: "Status"}, {header: "Variants", align: alignRight}}, rows))
				}
				return nil
			})
		},
	}
}

func newContentDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a content item and its variants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				if err := svc.DeleteContent(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted content %s\n", args[0])
				return nil
			})
		},
	}
}
