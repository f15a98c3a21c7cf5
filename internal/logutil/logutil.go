package logutil

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textOnly = bluemonday.StrictPolicy()

// TruncateForLog returns a single-line truncated preview for unstructured values.
func TruncateForLog(value string, maxChars int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	normalized := strings.ReplaceAll(trimmed, "\n", "\\n")
	if maxChars <= 0 || len(normalized) <= maxChars {
		return normalized
	}
	return truncateRunes(normalized, maxChars) + "... [truncated]"
}

// VisibleTextPreview strips markup from a page snapshot and returns the
// collapsed text, truncated to maxChars. Script and style bodies are dropped.
func VisibleTextPreview(markup string, maxChars int) string {
	stripped := textOnly.Sanitize(markup)
	text := strings.Join(strings.Fields(html.UnescapeString(stripped)), " ")
	if text == "" {
		return ""
	}
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	return truncateRunes(text, maxChars) + "... [truncated]"
}

// truncateRunes cuts s to at most maxBytes without splitting a UTF-8 sequence.
func truncateRunes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := 0
	for i := range s {
		if i > maxBytes {
			break
		}
		cut = i
	}
	return s[:cut]
}
