package textdiff

import (
	"html"
	"strings"
)

const (
	ansiAdded = "\x1b[1;32m"
	ansiReset = "\x1b[0m"
)

// RenderHTML escapes every segment and wraps added runs in <mark>.
func RenderHTML(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		text := html.EscapeString(s.Text)
		if s.Kind == KindAdded {
			b.WriteString("<mark>")
			b.WriteString(text)
			b.WriteString("</mark>")
			continue
		}
		b.WriteString(text)
	}
	return b.String()
}

// RenderANSI colors added runs for terminal output.
func RenderANSI(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Kind != KindAdded {
			b.WriteString(s.Text)
			continue
		}
		// Keep escapes off newline units so line-oriented pagers stay aligned.
		for i, line := range strings.Split(s.Text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(ansiAdded)
				b.WriteString(line)
				b.WriteString(ansiReset)
			}
		}
	}
	return b.String()
}

// Text concatenates segment text.
func Text(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}
