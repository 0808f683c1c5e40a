package fitsio

import (
	"strconv"
	"strings"
)

// Card is one 80-byte header record, parsed.
type Card struct {
	Keyword  string
	Value    string // raw value text; unquoted for strings
	IsString bool
	Comment  string
}

// Header is an ordered card list with keyword lookup. FITS allows duplicate
// keywords; lookup returns the first occurrence, matching common readers.
type Header struct {
	cards []Card
	index map[string]int
}

func newHeader(cards []Card) Header {
	index := make(map[string]int, len(cards))
	for i, card := range cards {
		if _, ok := index[card.Keyword]; !ok {
			index[card.Keyword] = i
		}
	}
	return Header{cards: cards, index: index}
}

// Cards returns the ordered card list.
func (h Header) Cards() []Card { return h.cards }

// Has reports whether the keyword is present.
func (h Header) Has(keyword string) bool {
	_, ok := h.index[keyword]
	return ok
}

// Str returns the trimmed string value of a keyword, or "" when absent.
func (h Header) Str(keyword string) string {
	i, ok := h.index[keyword]
	if !ok {
		return ""
	}
	return strings.TrimSpace(h.cards[i].Value)
}

// Float returns the numeric value of a keyword.
func (h Header) Float(keyword string) (float64, bool) {
	i, ok := h.index[keyword]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(h.cards[i].Value), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Int returns the integer value of a keyword.
func (h Header) Int(keyword string) (int, bool) {
	v, ok := h.Float(keyword)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// Logical returns the boolean value of a T/F keyword.
func (h Header) Logical(keyword string) (bool, bool) {
	i, ok := h.index[keyword]
	if !ok {
		return false, false
	}
	switch strings.TrimSpace(h.cards[i].Value) {
	case "T":
		return true, true
	case "F":
		return false, true
	}
	return false, false
}

// parseCard splits one 80-byte record into keyword, value, and comment.
func parseCard(record []byte) (Card, bool) {
	keyword := strings.TrimRight(string(record[:8]), " ")
	if keyword == "" || keyword == "COMMENT" || keyword == "HISTORY" {
		return Card{}, false
	}
	if keyword == "END" {
		return Card{Keyword: "END"}, true
	}
	if len(record) < 10 || record[8] != '=' {
		return Card{}, false
	}

	rest := string(record[10:])
	card := Card{Keyword: keyword}

	trimmed := strings.TrimLeft(rest, " ")
	if strings.HasPrefix(trimmed, "'") {
		// Quoted string; embedded quotes are doubled.
		var b strings.Builder
		i := 1
		for i < len(trimmed) {
			if trimmed[i] == '\'' {
				if i+1 < len(trimmed) && trimmed[i+1] == '\'' {
					b.WriteByte('\'')
					i += 2
					continue
				}
				i++
				break
			}
			b.WriteByte(trimmed[i])
			i++
		}
		card.IsString = true
		card.Value = strings.TrimRight(b.String(), " ")
		if slash := strings.IndexByte(trimmed[i:], '/'); slash >= 0 {
			card.Comment = strings.TrimSpace(trimmed[i+slash+1:])
		}
		return card, true
	}

	value := rest
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		value = rest[:slash]
		card.Comment = strings.TrimSpace(rest[slash+1:])
	}
	card.Value = strings.TrimSpace(value)
	return card, true
}
