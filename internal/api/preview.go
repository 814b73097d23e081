package api

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"famcontents/internal/generation"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Preview renders a stored variant body to HTML.
func (s *Service) Preview(ctx context.Context, id string) (PreviewResponse, error) {
	v, err := s.variants.Get(ctx, id)
	if err != nil {
		return PreviewResponse{}, err
	}
	body, err := v.DecodeBody()
	if err != nil {
		return PreviewResponse{}, err
	}
	md := BodyMarkdown(body)
	rendered, err := RenderMarkdown(md)
	if err != nil {
		return PreviewResponse{}, err
	}
	return PreviewResponse{
		VariantID: v.ID,
		Channel:   string(v.Channel),
		Markdown:  md,
		HTML:      rendered,
	}, nil
}

// RenderMarkdown converts markdown to HTML. Raw HTML in the source is omitted.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// BodyMarkdown lays out a generated body as markdown.
func BodyMarkdown(body generation.Body) string {
	var b strings.Builder
	switch v := body.(type) {
	case *generation.XBody:
		for i, post := range v.Posts {
			if i > 0 {
				b.WriteString("---\n\n")
			}
			paragraph(&b, post)
		}
		hashtags(&b, v.Hashtags)
		label(&b, "カテゴリ", v.Category)
	case *generation.InstagramFeedBody:
		paragraph(&b, v.Caption)
		for i, slide := range v.Slides {
			fmt.Fprintf(&b, "### %d. %s\n\n", i+1, slide.Heading)
			paragraph(&b, slide.Body)
		}
		hashtags(&b, v.Hashtags)
		label(&b, "カテゴリ", v.Category)
	case *generation.InstagramReelsBody:
		if v.Hook != "" {
			fmt.Fprintf(&b, "**%s**\n\n", v.Hook)
		}
		for i, scene := range v.Scenes {
			fmt.Fprintf(&b, "%d. (%d秒) %s / %s\n", i+1, int(scene.Seconds), scene.Visual, scene.Narration)
		}
		if len(v.Scenes) > 0 {
			b.WriteString("\n")
		}
		paragraph(&b, v.Caption)
		hashtags(&b, v.Hashtags)
	case *generation.NoteBody:
		if v.Title != "" {
			fmt.Fprintf(&b, "# %s\n\n", v.Title)
		}
		if v.Lead != "" {
			fmt.Fprintf(&b, "> %s\n\n", v.Lead)
		}
		paragraph(&b, v.BodyMarkdown)
		if len(v.Tags) > 0 {
			label(&b, "タグ", strings.Join(v.Tags, ", "))
		}
		label(&b, "カテゴリ", v.Category)
	case *generation.LineBody:
		paragraph(&b, v.Message)
		if v.CTA != "" {
			fmt.Fprintf(&b, "**%s**\n\n", v.CTA)
		}
	case *generation.AnalysisBody:
		paragraph(&b, v.Summary)
		list(&b, "要点", v.KeyPoints)
		label(&b, "想定読者", v.Audience)
		label(&b, "方向性", v.Direction)
		list(&b, "推奨チャネル", v.RecommendedChannels)
	case *generation.KnowledgeBody:
		for _, item := range v.Items {
			fmt.Fprintf(&b, "## %s\n\n", item.Title)
			paragraph(&b, item.Body)
			if len(item.Tags) > 0 {
				label(&b, "タグ", strings.Join(item.Tags, ", "))
			}
		}
	case *generation.ProofreadBody:
		paragraph(&b, v.CorrectedText)
		if len(v.Changes) > 0 {
			b.WriteString("## 修正箇所\n\n")
			for _, c := range v.Changes {
				fmt.Fprintf(&b, "- %s → %s", c.Before, c.After)
				if c.Reason != "" {
					fmt.Fprintf(&b, " (%s)", c.Reason)
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		label(&b, "スコア", fmt.Sprintf("%d", int(v.Score)))
	case *generation.GenericBody:
		paragraph(&b, v.Text)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func paragraph(b *strings.Builder, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.WriteString(text)
	b.WriteString("\n\n")
}

func hashtags(b *strings.Builder, tags []string) {
	if len(tags) == 0 {
		return
	}
	b.WriteString(strings.Join(tags, " "))
	b.WriteString("\n\n")
}

func label(b *strings.Builder, name, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "*%s: %s*\n\n", name, value)
}

func list(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
