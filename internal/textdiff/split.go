package textdiff

import (
	"strings"

	"golang.org/x/text/width"
)

// isTerminator reports whether r ends a clause. Fullwidth forms are folded to
// their narrow equivalents first.
func isTerminator(r rune) bool {
	if r == '。' {
		return true
	}
	switch width.Narrow.String(string(r)) {
	case ".", "!", "?":
		return true
	}
	return false
}

// Split breaks s into units. Every newline is its own unit. Any other unit
// runs up to and including a run of terminators, or to the end of s.
func Split(s string) []string {
	if s == "" {
		return nil
	}
	var (
		units []string
		buf   strings.Builder
		inRun bool
	)
	flush := func() {
		if buf.Len() > 0 {
			units = append(units, buf.String())
			buf.Reset()
		}
		inRun = false
	}
	for _, r := range s {
		if r == '\n' {
			flush()
			units = append(units, "\n")
			continue
		}
		term := isTerminator(r)
		if inRun && !term {
			flush()
		}
		buf.WriteRune(r)
		if term {
			inRun = true
		}
	}
	flush()
	return units
}
