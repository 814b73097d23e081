package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"famcontents/internal/api"
)

func newVariantCommand(ctx *commandContext) *cobra.Command {
	variantCmd := &cobra.Command{
		Use:   "variant",
		Short: "Materialize and review channel variants",
	}
	variantCmd.AddCommand(newVariantMaterializeCommand(ctx))
	variantCmd.AddCommand(newVariantListCommand(ctx))
	variantCmd.AddCommand(newVariantShowCommand(ctx))
	variantCmd.AddCommand(newVariantStatusCommand(ctx))
	variantCmd.AddCommand(newVariantPurgeCommand(ctx))
	return variantCmd
}

func newVariantMaterializeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "materialize <content-id> <channel>",
		Short: "Generate the variant for a channel once and return it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				view, err := svc.Materialize(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printVariant(cmd, ctx, view)
			})
		},
	}
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <content-id>",
		Short: "Materialize every target channel and move drafts to review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				resp, err := svc.GenerateAll(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderVariantTable(resp.Variants, shouldColorize(cmd.OutOrStdout())))
				return nil
			})
		},
	}
}

func newVariantListCommand(ctx *commandContext) *cobra.Command {
	var query api.VariantQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List variants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				resp, err := svc.ListVariants(cmd.Context(), query)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Items) == 0 {
					fmt.Fprintln(out, "No variants")
					return nil
				}
				fmt.Fprintln(out, renderVariantTable(resp.Items, shouldColorize(out)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&query.ContentID, "content", "", "Only variants of this content item")
	cmd.Flags().StringVar(&query.Channel, "channel", "", "Only variants for this channel")
	cmd.Flags().StringSliceVar(&query.Statuses, "status", nil, "Only variants in these statuses")
	cmd.Flags().BoolVar(&query.IncludeTrashed, "all", false, "Include trashed variants")
	cmd.Flags().IntVar(&query.Limit, "limit", 0, "Maximum number of variants")
	return cmd
}

func newVariantShowCommand(ctx *commandContext) *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a variant body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				if preview {
					resp, err := svc.Preview(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if ctx.jsonOutput() {
						return writeJSON(cmd, resp)
					}
					fmt.Fprint(cmd.OutOrStdout(), resp.Markdown)
					return nil
				}
				view, err := svc.GetVariant(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printVariant(cmd, ctx, view)
			})
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false, "Print the body laid out as markdown")
	return cmd
}

func newVariantStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <action>",
		Short: "Apply a review action",
		Long: "Apply a review action to a variant.\n" +
			"Actions: review, approve, reject, request_revision, publish, archive, trash, restore.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				view, err := svc.TransitionVariant(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Variant %s is now %s\n", view.ID, variantStatusLabel(view.Status, view.Archived, view.Trashed, shouldColorize(out)))
				return nil
			})
		},
	}
}

func newVariantPurgeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete variants trashed longer than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(svc *api.Service) error {
				resp, err := svc.PurgeTrashed(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %d trashed variant(s)\n", resp.Removed)
				return nil
			})
		},
	}
}

func printVariant(cmd *cobra.Command, ctx *commandContext, view api.VariantView) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, view)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:      %s\n", view.ID)
	fmt.Fprintf(out, "Content: %s\n", view.ContentID)
	fmt.Fprintf(out, "Channel: %s\n", view.Channel)
	fmt.Fprintf(out, "Status:  %s\n", variantStatusLabel(view.Status, view.Archived, view.Trashed, shouldColorize(out)))
	fmt.Fprintf(out, "Source:  %s\n", sourceLabel(view.Source, view.FailureReason))
	fmt.Fprintf(out, "Updated: %s\n", formatDisplayTime(view.UpdatedAt))
	return writeBody(out, view.Body)
}

func renderVariantTable(items []api.VariantView, colorize bool) string {
	rows := make([][]string, 0, len(items))
	for _, v := range items {
		rows = append(rows, []string{
			v.ID,
			v.ContentID,
			v.Channel,
			variantStatusLabel(v.Status, v.Archived, v.Trashed, colorize),
			v.Source,
			formatDisplayTime(v.UpdatedAt),
		})
	}
	return renderTable([]column{
		{header: "ID"},
		{header: "Content"},
		{header: "Channel"},
		{header: "Status"},
		{header: "Source"},
		{header: "Updated"},
	}, rows)
}
