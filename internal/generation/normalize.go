package generation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ContinuationMarker ends any field cut at its rune budget.
const ContinuationMarker = "…"

var (
	fencePattern      = regexp.MustCompile("(?m)^[ \t]*```[^\n]*\n?")
	headingPattern    = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]+`)
	boldStarPattern   = regexp.MustCompile(`\*\*([^*\n]+?)\*\*`)
	boldUnderPattern  = regexp.MustCompile(`__([^_\n]+?)__`)
	italicStarPattern = regexp.MustCompile(`\*([^*\n]+?)\*`)
	italicUnder       = regexp.MustCompile(`(^|[^\p{L}\p{N}_])_([^_\n]+?)_([^\p{L}\p{N}_]|$)`)
	inlineCodePattern = regexp.MustCompile("`([^`\n]+)`")
	strayMarkers      = regexp.MustCompile("\\*\\*|__|`")
)

// StripMarkup removes light inline markup (bold, italic, heading markers,
// code spans and fences) while keeping the enclosed text. Hashtags are not
// headings and survive.
func StripMarkup(s string) string {
	if s == "" {
		return s
	}
	s = fencePattern.ReplaceAllString(s, "")
	s = headingPattern.ReplaceAllString(s, "")
	s = boldStarPattern.ReplaceAllString(s, "$1")
	s = boldUnderPattern.ReplaceAllString(s, "$1")
	s = italicStarPattern.ReplaceAllString(s, "$1")
	s = italicUnder.ReplaceAllString(s, "$1$2$3")
	s = inlineCodePattern.ReplaceAllString(s, "$1")
	s = strayMarkers.ReplaceAllString(s, "")
	return s
}

// truncateRunes cuts s to at most limit runes, ending with ContinuationMarker
// when anything was removed.
func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	keep := limit - utf8.RuneCountInString(ContinuationMarker)
	if keep < 0 {
		keep = 0
	}
	return strings.TrimRightFunc(string(runes[:keep]), isSpace) + ContinuationMarker
}

// plain strips markup and enforces a rune budget on a plain-text field.
func plain(s string, limit int) string {
	return truncateRunes(strings.TrimSpace(StripMarkup(strings.TrimSpace(s))), limit)
}

// rich enforces a rune budget on a field that keeps its markup.
func rich(s string, limit int) string {
	return truncateRunes(strings.TrimSpace(s), limit)
}

// capPlain normalizes each entry as plain text, drops empties, and keeps the first n.
func capPlain(values []string, n, limit int) []string {
	out := make([]string, 0, min(len(values), n))
	for _, v := range values {
		if len(out) >= n {
			break
		}
		if p := plain(v, limit); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeHashtags returns at most n unique "#tag" strings without whitespace.
func normalizeHashtags(values []string, n int) []string {
	out := make([]string, 0, min(len(values), n))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if len(out) >= n {
			break
		}
		tag := strings.Join(strings.Fields(StripMarkup(v)), "")
		tag = strings.TrimLeft(tag, "#＃")
		if tag == "" {
			continue
		}
		tag = "#" + truncateRunes(tag, hashtagRunes)
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// normalizeTags returns at most n unique bare tags.
func normalizeTags(values []string, n int) []string {
	out := make([]string, 0, min(len(values), n))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if len(out) >= n {
			break
		}
		tag := strings.TrimLeft(plain(v, tagRunes), "#＃ ")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// clampEnum lowercases v and returns it when allowed, def otherwise.
func clampEnum(v string, allowed []string, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return def
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
