package textutil

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeriveLabel builds a human-facing trace label from a filename when the file
// itself carries no target name: the extension is dropped and separator runs
// become single spaces, title-cased.
func DeriveLabel(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	var cleaned strings.Builder
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace && cleaned.Len() > 0 {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	label := strings.TrimSpace(cleaned.String())
	if label == "" {
		return "Spectrum"
	}
	return cases.Title(language.Und).String(label)
}

// IsNullLike reports whether a harvested metadata value is one of the string
// spellings of "no value" that spreadsheet exports produce.
func IsNullLike(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "nan", "none", "null", "n/a", "na":
		return true
	}
	return false
}

// TraceID converts a display label into a stable identifier token.
func TraceID(label string) string {
	slug := Slug(label)
	if slug == "" {
		return "trace"
	}
	return slug
}
