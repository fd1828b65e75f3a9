// Package normalize produces canonical comparison keys for human-entered
// grade and subject labels, so that "Lớp 6", "lop 6" and "LỚP 6" all
// resolve to the same remote folder.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks, turning
// "Toán" into "Toan". NFC recomposition at the end keeps the output
// canonical for inputs that carry non-Latin base characters.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize converts a label into its canonical comparison key:
// diacritics removed, lower-cased, internal whitespace collapsed to
// single spaces, surrounding whitespace trimmed. It is total (never
// fails) and idempotent.
func Normalize(label string) string {
	out, _, err := transform.String(stripMarks, label)
	if err != nil {
		// Transform errors only occur on invalid UTF-8; fall back to
		// the raw input so the function stays total.
		out = label
	}

	// Vietnamese đ/Đ is a base letter, not a combining mark, so the
	// NFD pass leaves it alone.
	out = strings.ReplaceAll(out, "đ", "d")
	out = strings.ReplaceAll(out, "Đ", "d")

	out = strings.ToLower(out)
	return strings.Join(strings.Fields(out), " ")
}
