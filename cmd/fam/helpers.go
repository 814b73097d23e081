package main

import (
	"strings"

	"github.com/spf13/cobra"

	"famcontents/internal/api"
)

// materialFlags collect the fields shared by content add and generate.
type materialFlags struct {
	title        string
	summary      string
	direction    string
	tone         string
	instructions string
	files        []string
}

func (m *materialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&m.title, "title", "t", "", "Subject title")
	cmd.Flags().StringVarP(&m.summary, "summary", "s", "", "Subject summary")
	cmd.Flags().StringVar(&m.direction, "direction", "", "Direction from a prior analysis")
	cmd.Flags().StringVar(&m.tone, "tone", "", "Tone (casual, friendly, formal, professional)")
	cmd.Flags().StringVar(&m.instructions, "instructions", "", "Custom instructions")
	cmd.Flags().StringSliceVarP(&m.files, "file", "f", nil, "Reference file to read (repeatable)")
}

// readFiles loads reference files through the service's assembler so
// excerpts honor the configured limit.
func (m *materialFlags) readFiles(svc *api.Service) ([]api.FileRef, []api.FileExcerpt, error) {
	if len(m.files) == 0 {
		return nil, nil, nil
	}
	refs, excerpts, err := svc.Assembler().ReadFiles(m.files)
	if err != nil {
		return nil, nil, err
	}
	outRefs := make([]api.FileRef, 0, len(refs))
	for _, r := range refs {
		outRefs = append(outRefs, api.FileRef{Name: r.Name, Category: string(r.Category)})
	}
	outExcerpts := make([]api.FileExcerpt, 0, len(excerpts))
	for _, e := range excerpts {
		outExcerpts = append(outExcerpts, api.FileExcerpt(e))
	}
	return outRefs, outExcerpts, nil
}

func formatDisplayTime(value string) string {
	t := api.ParseTime(value)
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
