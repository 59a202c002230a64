// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fenceRe matches a fenced code block, optionally tagged json.
var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// SalvageJSON extracts a JSON object from a model reply that may wrap it
// in a markdown fence or surrounding prose. Models asked for bare JSON
// still do this often enough that rejecting outright would fail otherwise
// usable replies. Returns false when no parseable object is found.
func SalvageJSON(text string) ([]byte, bool) {
	if json.Valid([]byte(text)) {
		return []byte(text), true
	}

	if m := fenceRe.FindStringSubmatch(text); m != nil {
		candidate := strings.TrimSpace(m[1])
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), true
		}
	}

	// Widest brace-delimited span.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), true
		}
	}

	return nil, false
}
