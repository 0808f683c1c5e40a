package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticFolder strips combining marks so accented labels compare equal to
// their plain-ASCII spellings.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// invisibleRunes are characters that survive copy/paste from spreadsheets and
// PDFs and must never influence column matching.
var invisibleRunes = map[rune]struct{}{
	'\uFEFF': {}, // byte order mark
	'\u200B': {}, // zero-width space
	'\u200C': {}, // zero-width non-joiner
	'\u200D': {}, // zero-width joiner
	'\u2060': {}, // word joiner
}

// Slug canonicalizes a column label for role matching: invisible characters
// are stripped, diacritics folded, camelCase boundaries split, and every run
// of punctuation or whitespace collapsed to a single underscore. The result
// is lowercase, so "FluxDensity", " flux density " and a BOM-prefixed
// "Flux-Density" all slug to "flux_density".
func Slug(label string) string {
	folded, _, err := transform.String(diacriticFolder, label)
	if err != nil {
		folded = label
	}

	var b strings.Builder
	b.Grow(len(folded) + 4)
	prev := rune(0)
	for _, r := range folded {
		if _, skip := invisibleRunes[r]; skip {
			prev = r
			continue
		}
		switch {
		case unicode.IsUpper(r):
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		prev = r
	}

	slug := b.String()
	for strings.Contains(slug, "__") {
		slug = strings.ReplaceAll(slug, "__", "_")
	}
	return strings.Trim(slug, "_")
}

// Tokens splits a slugged label into its component words, preserving order
// and dropping empties.
func Tokens(label string) []string {
	slug := Slug(label)
	if slug == "" {
		return nil
	}
	parts := strings.Split(slug, "_")
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// TokenSet returns the tokens of a label as a membership set.
func TokenSet(label string) map[string]struct{} {
	tokens := Tokens(label)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
