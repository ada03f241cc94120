package ai

import (
	"errors"
	"strings"
)

// ErrNoJSON reports that no balanced JSON object was found in a response.
var ErrNoJSON = errors.New("no JSON object found in response")

// ExtractJSONObject pulls the first balanced JSON object out of model
// output. Models wrap JSON in prose or markdown fences more often than
// not, so this scans rather than parsing the whole body strictly.
func ExtractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)

	// Prefer a fenced block when present.
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			if obj, ok := firstBalancedObject(rest[:end]); ok {
				return obj, nil
			}
		}
	}

	if obj, ok := firstBalancedObject(text); ok {
		return obj, nil
	}
	return "", ErrNoJSON
}

// firstBalancedObject scans for the first '{' and returns the substring
// up to its matching '}', tracking string literals and escapes so braces
// inside values don't break the count.
func firstBalancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}
	return "", false
}
