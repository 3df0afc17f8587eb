// Package textnorm folds free text and sheet headers into comparable keys:
// lowercase, accents removed, whitespace collapsed.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes s and drops combining marks, so "ç" becomes "c".
// A transformer chain keeps state, so one is built per call.
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// Fold lowercases s, strips accents, trims it and collapses inner whitespace.
// Punctuation is kept.
func Fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(stripAccents(s))), " ")
}

// Key converts a header into its canonical lookup key: folded, every run of
// characters outside [a-z0-9] replaced by a single "_", leading and trailing
// separators removed. "Share de Espaço M-1" becomes "share_de_espaco_m_1".
func Key(s string) string {
	folded := strings.ToLower(stripAccents(s))

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Words is Key with spaces, so "EPA-Savassi" and "epa savassi" compare equal.
func Words(s string) string {
	return strings.ReplaceAll(Key(s), "_", " ")
}

// Alnum keeps only letters and digits of s, uppercased, so store codes such as
// "12345-6" and "123456" compare equal.
func Alnum(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(stripAccents(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
