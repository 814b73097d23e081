package api

import (
	"encoding/json"
	"fmt"
	"time"

	"famcontents/internal/content"
	"famcontents/internal/generation"
	"famcontents/internal/store"
	"famcontents/internal/variant"
)

// FromContent converts a stored content item to its API representation.
func FromContent(c *content.Content) ContentView {
	if c == nil {
		return ContentView{}
	}
	dto := ContentView{
		ID:           c.ID,
		Title:        c.Title,
		Summary:      c.Summary,
		Channels:     make([]string, 0, len(c.Channels)),
		Files:        make([]FileRef, 0, len(c.Files)),
		Excerpts:     make([]FileExcerpt, 0, len(c.Excerpts)),
		Direction:    c.Direction,
		Tone:         string(c.Tone),
		Instructions: c.Instructions,
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
	}
	for _, ch := range c.Channels {
		dto.Channels = append(dto.Channels, string(ch))
	}
	for _, f := range c.Files {
		dto.Files = append(dto.Files, FileRef{Name: f.Name, Category: string(f.Category)})
	}
	for _, e := range c.Excerpts {
		dto.Excerpts = append(dto.Excerpts, FileExcerpt(e))
	}
	return dto
}

// FromContents converts a slice of content items.
func FromContents(items []*content.Content) []ContentView {
	out := make([]ContentView, 0, len(items))
	for _, c := range items {
		out = append(out, FromContent(c))
	}
	return out
}

// FromVariant converts a stored variant to its API representation.
func FromVariant(v *variant.Variant) VariantView {
	if v == nil {
		return VariantView{}
	}
	dto := VariantView{
		ID:            v.ID,
		ContentID:     v.ContentID,
		Channel:       string(v.Channel),
		Status:        string(v.Status),
		Source:        string(v.Source),
		FailureReason: v.FailureReason,
		Body:          append(json.RawMessage(nil), v.Body...),
		Archived:      v.Archived(),
		Trashed:       v.Trashed(),
		CreatedAt:     formatTime(v.CreatedAt),
		UpdatedAt:     formatTime(v.UpdatedAt),
	}
	if v.ArchivedAt != nil {
		dto.ArchivedAt = formatTime(*v.ArchivedAt)
	}
	if v.TrashedAt != nil {
		dto.TrashedAt = formatTime(*v.TrashedAt)
	}
	return dto
}

// FromVariants converts a slice of variants.
func FromVariants(items []*variant.Variant) []VariantView {
	out := make([]VariantView, 0, len(items))
	for _, v := range items {
		out = append(out, FromVariant(v))
	}
	return out
}

// FromResult converts a generation result, encoding its body.
func FromResult(r generation.Result) (GenerateResponse, error) {
	body, err := json.Marshal(r.Body)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("encode %s body: %w", r.Kind, err)
	}
	return GenerateResponse{
		Kind:          string(r.Kind),
		Body:          body,
		Source:        string(r.Source),
		FailureReason: r.FailureReason,
	}, nil
}

// FromTaskConfig converts a stored task record. effective carries the
// parameters that generation will actually use for the kind.
func FromTaskConfig(kind generation.Kind, cfg store.TaskConfig, stored bool, effective TaskParams) TaskConfigView {
	dto := TaskConfigView{
		Kind:      string(kind),
		Stored:    stored,
		Effective: effective,
	}
	if !stored {
		return dto
	}
	dto.Model = cfg.Model
	dto.MaxOutputTokens = cfg.MaxOutputTokens
	dto.UpdatedAt = formatTime(cfg.UpdatedAt)
	if cfg.Temperature != nil {
		t := *cfg.Temperature
		dto.Temperature = &t
	}
	return dto
}

// ToInput converts a request into generation input.
func (r GenerateRequest) ToInput() generation.Input {
	in := generation.Input{
		Title:        r.Title,
		Summary:      r.Summary,
		Direction:    r.Direction,
		Tone:         r.Tone,
		Instructions: r.Instructions,
		Text:         r.Text,
	}
	for _, f := range r.Files {
		in.Files = append(in.Files, generation.FileRef{Name: f.Name, Category: generation.FileCategory(f.Category)})
	}
	for _, e := range r.Excerpts {
		in.Excerpts = append(in.Excerpts, generation.FileExcerpt(e))
	}
	return in
}

// ToContent converts a request into an unnormalized content item.
func (r ContentRequest) ToContent() *content.Content {
	c := &content.Content{
		ID:           r.ID,
		Title:        r.Title,
		Summary:      r.Summary,
		Direction:    r.Direction,
		Tone:         generation.Tone(r.Tone),
		Instructions: r.Instructions,
	}
	for _, ch := range r.Channels {
		c.Channels = append(c.Channels, generation.Kind(ch))
	}
	for _, f := range r.Files {
		c.Files = append(c.Files, generation.FileRef{Name: f.Name, Category: generation.FileCategory(f.Category)})
	}
	for _, e := range r.Excerpts {
		c.Excerpts = append(c.Excerpts, generation.FileExcerpt(e))
	}
	return c
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// ParseTime parses an API timestamp. It returns the zero time for empty or
// malformed values.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}
