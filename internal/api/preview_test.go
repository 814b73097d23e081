package api

import (
	"strings"
	"testing"

	"famcontents/internal/generation"
)

func TestBodyMarkdownLayouts(t *testing.T) {
	tests := []struct {
		name string
		body generation.Body
		want []string
	}{
		{
			name: "x",
			body: &generation.XBody{Posts: []string{"一つ目", "二つ目"}, Hashtags: []string{"#散歩"}, Category: "tips"},
			want: []string{"一つ目\n\n---\n\n二つ目", "#散歩", "*カテゴリ: tips*"},
		},
		{
			name: "note",
			body: &generation.NoteBody{Title: "散歩", Lead: "導入", BodyMarkdown: "## 見出し\n\n本文", Tags: []string{"a", "b"}, Category: "story"},
			want: []string{"# 散歩", "> 導入", "## 見出し", "*タグ: a, b*"},
		},
		{
			name: "reels",
			body: &generation.InstagramReelsBody{Hook: "必見", Scenes: []generation.Scene{{Seconds: 3, Visual: "公園", Narration: "出発"}}},
			want: []string{"**必見**", "1. (3秒) 公園 / 出発"},
		},
		{
			name: "proofread",
			body: &generation.ProofreadBody{CorrectedText: "直した文。", Changes: []generation.Change{{Before: "。。", After: "。", Reason: "重複"}}, Score: 95},
			want: []string{"直した文。", "- 。。 → 。 (重複)", "*スコア: 95*"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := BodyMarkdown(tt.body)
			for _, want := range tt.want {
				if !strings.Contains(md, want) {
					t.Fatalf("markdown missing %q:\n%s", want, md)
				}
			}
		})
	}
}

func TestRenderMarkdownOmitsRawHTML(t *testing.T) {
	html, err := RenderMarkdown("# 見出し\n\n<script>alert(1)</script>\n\n一行目\n二行目\n")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("raw html leaked: %s", html)
	}
	if !strings.Contains(html, "<h1>見出し</h1>") {
		t.Fatalf("expected heading, got %s", html)
	}
	if !strings.Contains(html, "一行目<br>") {
		t.Fatalf("expected hard line break, got %s", html)
	}
}
