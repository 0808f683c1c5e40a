package fitsio

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Builder assembles FITS byte streams for fixtures and round-trip tests.
// Images are written as 64-bit floats and table columns as D fields, which
// keeps every value exact through a decode.
type Builder struct {
	hdus [][]byte
}

// NewBuilder starts an empty container. The first HDU appended becomes the
// primary; appending an image first is the usual shape, or use EmptyPrimary
// for table-only files.
func NewBuilder() *Builder { return &Builder{} }

// KV is a header keyword assignment supplied by the caller.
type KV struct {
	Key    string
	Value  any // string, bool, int, or float64
	String bool
}

// Str builds a string-valued keyword.
func Str(key, value string) KV { return KV{Key: key, Value: value, String: true} }

// Num builds a numeric keyword.
func Num(key string, value float64) KV { return KV{Key: key, Value: value} }

// EmptyPrimary appends a dataless primary HDU.
func (b *Builder) EmptyPrimary(extra ...KV) *Builder {
	cards := []string{
		formatLogical("SIMPLE", true),
		formatInt("BITPIX", 8),
		formatInt("NAXIS", 0),
	}
	cards = append(cards, formatKVs(extra)...)
	b.hdus = append(b.hdus, assemble(cards, nil))
	return b
}

// PrimaryImage appends a primary HDU carrying a 1-D float64 image.
func (b *Builder) PrimaryImage(values []float64, extra ...KV) *Builder {
	cards := []string{
		formatLogical("SIMPLE", true),
		formatInt("BITPIX", -64),
		formatInt("NAXIS", 1),
		formatInt("NAXIS1", len(values)),
	}
	cards = append(cards, formatKVs(extra)...)
	b.hdus = append(b.hdus, assemble(cards, encodeFloats(values)))
	return b
}

// AppendImage appends an IMAGE extension carrying a 1-D float64 image.
func (b *Builder) AppendImage(name string, values []float64, extra ...KV) *Builder {
	cards := []string{
		formatString("XTENSION", "IMAGE"),
		formatInt("BITPIX", -64),
		formatInt("NAXIS", 1),
		formatInt("NAXIS1", len(values)),
		formatInt("PCOUNT", 0),
		formatInt("GCOUNT", 1),
	}
	if name != "" {
		cards = append(cards, formatString("EXTNAME", name))
	}
	cards = append(cards, formatKVs(extra)...)
	b.hdus = append(b.hdus, assemble(cards, encodeFloats(values)))
	return b
}

// BuilderColumn is one table field to encode.
type BuilderColumn struct {
	Name   string
	Unit   string
	Values []float64
}

// AppendTable appends a BINTABLE extension of scalar D columns. All columns
// must share a length.
func (b *Builder) AppendTable(name string, columns []BuilderColumn, extra ...KV) *Builder {
	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0].Values)
	}
	cards := []string{
		formatString("XTENSION", "BINTABLE"),
		formatInt("BITPIX", 8),
		formatInt("NAXIS", 2),
		formatInt("NAXIS1", 8*len(columns)),
		formatInt("NAXIS2", rows),
		formatInt("PCOUNT", 0),
		formatInt("GCOUNT", 1),
		formatInt("TFIELDS", len(columns)),
	}
	for i, col := range columns {
		cards = append(cards, formatString(fmt.Sprintf("TTYPE%d", i+1), col.Name))
		cards = append(cards, formatString(fmt.Sprintf("TFORM%d", i+1), "1D"))
		if col.Unit != "" {
			cards = append(cards, formatString(fmt.Sprintf("TUNIT%d", i+1), col.Unit))
		}
	}
	if name != "" {
		cards = append(cards, formatString("EXTNAME", name))
	}
	cards = append(cards, formatKVs(extra)...)

	payload := make([]byte, 0, rows*8*len(columns))
	for r := 0; r < rows; r++ {
		for _, col := range columns {
			var cell [8]byte
			binary.BigEndian.PutUint64(cell[:], math.Float64bits(col.Values[r]))
			payload = append(payload, cell[:]...)
		}
	}
	b.hdus = append(b.hdus, assemble(cards, payload))
	return b
}

// Bytes returns the assembled container.
func (b *Builder) Bytes() []byte {
	var out []byte
	for _, hdu := range b.hdus {
		out = append(out, hdu...)
	}
	return out
}

func encodeFloats(values []float64) []byte {
	out := make([]byte, 8*len(values))
	for i, v := range values {
		binary.BigEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

func formatKVs(kvs []KV) []string {
	cards := make([]string, 0, len(kvs))
	for _, kv := range kvs {
		switch v := kv.Value.(type) {
		case string:
			cards = append(cards, formatString(kv.Key, v))
		case bool:
			cards = append(cards, formatLogical(kv.Key, v))
		case int:
			cards = append(cards, formatInt(kv.Key, v))
		case float64:
			cards = append(cards, formatFloat(kv.Key, v))
		}
	}
	return cards
}

func formatString(key, value string) string {
	quoted := "'" + strings.ReplaceAll(value, "'", "''")
	for len(quoted) < 9 { // minimum 8 quoted characters
		quoted += " "
	}
	quoted += "'"
	return fmt.Sprintf("%-8s= %s", key, quoted)
}

func formatLogical(key string, value bool) string {
	v := "F"
	if value {
		v = "T"
	}
	return fmt.Sprintf("%-8s= %20s", key, v)
}

func formatInt(key string, value int) string {
	return fmt.Sprintf("%-8s= %20d", key, value)
}

func formatFloat(key string, value float64) string {
	return fmt.Sprintf("%-8s= %20s", key, formatG(value))
}

func formatG(value float64) string {
	s := fmt.Sprintf("%G", value)
	if !strings.ContainsAny(s, ".E") {
		s += "."
	}
	return s
}

// assemble pads the header and payload to whole blocks.
func assemble(cards []string, payload []byte) []byte {
	var header []byte
	for _, card := range cards {
		header = append(header, pad80(card)...)
	}
	header = append(header, pad80("END")...)
	for len(header)%blockSize != 0 {
		header = append(header, pad80("")...)
	}

	out := append(header, payload...)
	for len(out)%blockSize != 0 {
		out = append(out, 0)
	}
	return out
}

func pad80(card string) []byte {
	b := make([]byte, 80)
	for i := range b {
		b[i] = ' '
	}
	copy(b, card)
	return b
}
