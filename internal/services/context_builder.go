package services

import (
	"strings"
	"unicode/utf8"

	"tungra/internal/models"
)

// TruncationMarker is appended when the assembled context exceeds its
// character budget.
const TruncationMarker = "... (truncated)"

// BuildContext formats retrieved chunks into the bounded prompt context.
// Each chunk becomes "<title>: <description>"; blocks are joined with a
// blank line in retriever order, so truncation only ever drops the least
// relevant tail. Truncation happens once, after full assembly.
func BuildContext(chunks []models.RetrievedChunk, maxChars int) string {
	blocks := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, chunk.Title+": "+chunk.Description)
	}

	return TruncateContext(strings.Join(blocks, "\n\n"), maxChars)
}

// TruncateContext bounds context to maxChars bytes, appending the
// truncation marker when anything was cut. Input at or under the budget is
// returned unchanged. The cut backs off to a rune boundary so a multi-byte
// character straddling the budget is dropped whole, never split.
func TruncateContext(context string, maxChars int) string {
	if len(context) <= maxChars {
		return context
	}

	cut := maxChars
	for cut > 0 && !utf8.RuneStart(context[cut]) {
		cut--
	}
	return context[:cut] + TruncationMarker
}
