package content

import (
	"strings"
	"time"

	"famcontents/internal/generation"
	"famcontents/internal/services"
)

// Content is one item in the editorial backlog.
type Content struct {
	ID           string                   `json:"id" yaml:"id"`
	Title        string                   `json:"title" yaml:"title"`
	Summary      string                   `json:"summary" yaml:"summary"`
	Channels     []generation.Kind        `json:"channels" yaml:"channels"`
	Files        []generation.FileRef     `json:"files" yaml:"files"`
	Excerpts     []generation.FileExcerpt `json:"excerpts" yaml:"excerpts"`
	Direction    string                   `json:"direction,omitempty" yaml:"direction"`
	Tone         generation.Tone          `json:"tone,omitempty" yaml:"tone"`
	Instructions string                   `json:"instructions,omitempty" yaml:"instructions"`
	CreatedAt    time.Time                `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time                `json:"updated_at" yaml:"-"`
}

// Normalize trims text fields, canonicalizes channels and file categories,
// and rejects content that cannot be generated from.
func (c *Content) Normalize() error {
	c.Title = strings.TrimSpace(c.Title)
	c.Summary = strings.TrimSpace(c.Summary)
	c.Direction = strings.TrimSpace(c.Direction)
	c.Instructions = strings.TrimSpace(c.Instructions)
	c.Tone = generation.ParseTone(string(c.Tone))

	if c.Title == "" {
		return services.Wrap(services.ErrValidation, "content", "normalize", "title is required", nil)
	}

	channels := make([]generation.Kind, 0, len(c.Channels))
	seen := make(map[generation.Kind]struct{}, len(c.Channels))
	for _, raw := range c.Channels {
		kind, _ := generation.ParseKind(string(raw))
		if !kind.IsChannel() {
			return services.Wrap(services.ErrValidation, "content", "normalize", "unknown channel "+string(raw), nil)
		}
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}
		channels = append(channels, kind)
	}
	c.Channels = channels

	files := make([]generation.FileRef, 0, len(c.Files))
	for _, f := range c.Files {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		files = append(files, generation.FileRef{Name: name, Category: generation.ParseFileCategory(string(f.Category), name)})
	}
	c.Files = files

	excerpts := make([]generation.FileExcerpt, 0, len(c.Excerpts))
	for _, ex := range c.Excerpts {
		if strings.TrimSpace(ex.Text) == "" {
			continue
		}
		excerpts = append(excerpts, generation.FileExcerpt{Name: strings.TrimSpace(ex.Name), Text: ex.Text})
	}
	c.Excerpts = excerpts
	return nil
}

// HasChannel reports whether kind is one of the content's target channels.
func (c *Content) HasChannel(kind generation.Kind) bool {
	for _, ch := range c.Channels {
		if ch == kind {
			return true
		}
	}
	return false
}

// ToInput converts the content into raw generation input.
func (c *Content) ToInput() generation.Input {
	in := generation.Input{
		Title:        c.Title,
		Summary:      c.Summary,
		Direction:    c.Direction,
		Tone:         string(c.Tone),
		Instructions: c.Instructions,
	}
	if len(c.Files) > 0 {
		in.Files = append([]generation.FileRef(nil), c.Files...)
	}
	if len(c.Excerpts) > 0 {
		in.Excerpts = append([]generation.FileExcerpt(nil), c.Excerpts...)
	}
	return in
}

// Clone returns a deep copy.
func (c *Content) Clone() *Content {
	if c == nil {
		return nil
	}
	out := *c
	out.Channels = append([]generation.Kind(nil), c.Channels...)
	out.Files = append([]generation.FileRef(nil), c.Files...)
	out.Excerpts = append([]generation.FileExcerpt(nil), c.Excerpts...)
	return &out
}
