package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ExtractObject returns the first complete JSON object in a model reply.
// Markdown code fences and prose before or after the object are ignored.
// A reply that is well-formed JSON on its own must have an object root.
func ExtractObject(content string) (json.RawMessage, error) {
	text := unfence(strings.TrimSpace(content))
	if text == "" {
		return nil, errors.New("empty payload")
	}
	if json.Valid([]byte(text)) {
		if text[0] != '{' {
			return nil, fmt.Errorf("payload root is not an object: %s", snippet(text))
		}
		return json.RawMessage(text), nil
	}
	var lastErr error
	for offset := 0; offset < len(text); {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i
		var obj json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[start:]))
		dec.UseNumber()
		if err := dec.Decode(&obj); err == nil {
			return obj, nil
		} else if lastErr == nil {
			lastErr = err
		}
		offset = start + 1
	}
	if lastErr != nil {
		return nil, fmt.Errorf("no valid JSON object: %w (payload: %s)", lastErr, snippet(text))
	}
	return nil, fmt.Errorf("no JSON object in payload: %s", snippet(text))
}

// DecodeJSON extracts the reply's JSON object and unmarshals it into target.
func DecodeJSON(content string, target any) error {
	obj, err := ExtractObject(content)
	if err != nil {
		return err
	}
	return json.Unmarshal(obj, target)
}

// unfence drops a leading ```json (or bare ```) line and the closing fence.
func unfence(text string) string {
	rest, ok := strings.CutPrefix(text, "```")
	if !ok {
		return text
	}
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.Contains(rest[:nl], "{") {
		rest = rest[nl+1:]
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func snippet(text string) string {
	const max = 160
	flat := strings.Join(strings.Fields(text), " ")
	if r := []rune(flat); len(r) > max {
		return string(r[:max]) + "..."
	}
	return flat
}
