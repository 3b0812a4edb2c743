package collector

import (
	"html"
	"strings"
)

// invisibleReplacer strips zero-width and byte-order-mark characters that
// survive HTML extraction.
var invisibleReplacer = strings.NewReplacer(
	"\u200b", "", // zero-width space
	"\u200c", "", // zero-width non-joiner
	"\u200d", "", // zero-width joiner
	"\ufeff", "", // byte order mark
)

// Clean normalizes extracted text: decodes HTML entities, strips invisible
// characters, collapses all whitespace runs into single spaces and trims.
// Clean is idempotent: Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	if text == "" {
		return ""
	}

	// Decode to a fixpoint so double-escaped input cannot break idempotence.
	// Each decode pass strictly shrinks the text, so this terminates.
	for {
		decoded := html.UnescapeString(text)
		if decoded == text {
			break
		}
		text = decoded
	}

	text = invisibleReplacer.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}
