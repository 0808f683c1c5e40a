package textutil

import "strings"

// unitReplacer rewrites unicode spellings of physical units onto their ASCII
// canonical forms before matching.
var unitReplacer = strings.NewReplacer(
	"µ", "u", // micro sign
	"μ", "u", // greek small mu
	"å", "angstrom",
	"Å", "angstrom",
	"\u212B", "angstrom", // angstrom sign, distinct from U+00C5
	"⁻¹", "-1", // superscript minus one
	"−", "-", // minus sign
	"^", "",
)

// CanonicalUnit normalizes a raw unit annotation ("µm", "Å", "cm^-1",
// "erg/s/cm2/A") into a lowercase ASCII token suitable for table lookup.
// Empty input stays empty.
func CanonicalUnit(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = unitReplacer.Replace(text)
	// Unit annotations arrive from the same messy headers as labels; drop
	// the invisible characters Slug strips.
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if _, skip := invisibleRunes[r]; skip {
			continue
		}
		b.WriteRune(r)
	}
	text = strings.ToLower(strings.TrimSpace(b.String()))
	if text == "1/cm" {
		return "cm-1"
	}
	return text
}

// BracketedUnit extracts the first parenthesized or bracketed annotation from
// a raw header label, e.g. "Wave Length (µm)" yields "µm". The second return
// reports whether an annotation was present.
func BracketedUnit(label string) (string, bool) {
	for _, pair := range [][2]byte{{'(', ')'}, {'[', ']'}} {
		open := strings.IndexByte(label, pair[0])
		if open < 0 {
			continue
		}
		end := strings.IndexByte(label[open+1:], pair[1])
		if end < 0 {
			continue
		}
		inner := strings.TrimSpace(label[open+1 : open+1+end])
		if inner != "" {
			return inner, true
		}
	}
	return "", false
}

// StripUnitAnnotation removes a trailing parenthesized or bracketed unit
// annotation from a header label, leaving only the column name.
func StripUnitAnnotation(label string) string {
	for _, open := range []byte{'(', '['} {
		if idx := strings.IndexByte(label, open); idx >= 0 {
			label = label[:idx]
		}
	}
	return strings.TrimSpace(label)
}
