package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFence removes a Markdown code fence around a completion. When the
// text contains several fenced segments the longest one wins.
func StripCodeFence(text string) string {
	txt := strings.TrimSpace(text)
	if !strings.HasPrefix(txt, "```") {
		return txt
	}
	longest := ""
	for _, part := range strings.Split(txt, "```") {
		if len(part) > len(longest) {
			longest = part
		}
	}
	longest = strings.TrimSpace(longest)
	// Drop a language tag such as "json" left on the first line.
	if nl := strings.IndexByte(longest, '\n'); nl >= 0 {
		first := strings.TrimSpace(longest[:nl])
		if first != "" && !strings.ContainsAny(first, "[]{}\"") {
			longest = strings.TrimSpace(longest[nl+1:])
		}
	}
	return longest
}

// ExtractArray returns the outermost [...] span of a completion after fence
// stripping, tolerating prose around it.
func ExtractArray(text string) (json.RawMessage, error) {
	return extractSpan(text, '[', ']')
}

// ExtractObject returns the outermost {...} span of a completion.
func ExtractObject(text string) (json.RawMessage, error) {
	return extractSpan(text, '{', '}')
}

func extractSpan(text string, open, close byte) (json.RawMessage, error) {
	txt := StripCodeFence(text)
	start := strings.IndexByte(txt, open)
	end := strings.LastIndexByte(txt, close)
	if start == -1 || end == -1 || end < start {
		return nil, &ErrInvalidResponse{
			Content: json.RawMessage(text),
			Err:     fmt.Errorf("no %c...%c span in completion", open, close),
		}
	}
	return json.RawMessage(txt[start : end+1]), nil
}
