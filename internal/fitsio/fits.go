package fitsio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const blockSize = 2880

// File is a parsed FITS container.
type File struct {
	HDUs []HDU
}

// HDU is one header-data unit. Image holds the flattened pixel vector for the
// primary HDU and IMAGE extensions; Table is set for BINTABLE extensions.
type HDU struct {
	Index  int
	Name   string
	Header Header
	Image  []float64
	Table  *Table
}

// IsTable reports whether the HDU carries a binary table.
func (h *HDU) IsTable() bool { return h.Table != nil }

// HasData reports whether the HDU carries any payload at all.
func (h *HDU) HasData() bool { return len(h.Image) > 0 || h.IsTable() }

// Table is a decoded BINTABLE payload.
type Table struct {
	Rows    int
	Columns []TableColumn
}

// Column returns the named column, matched case-insensitively.
func (t *Table) Column(name string) (*TableColumn, bool) {
	for i := range t.Columns {
		if strings.EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// TableColumn is one field of a binary table. Numeric fields decode to
// Values, flattened row-major when the repeat count exceeds one.
type TableColumn struct {
	Name    string
	Unit    string
	Repeat  int
	Numeric bool
	Values  []float64
}

// Parse decodes a FITS byte stream.
func Parse(data []byte) (*File, error) {
	if len(data) < blockSize {
		return nil, errors.New("truncated file: shorter than one block")
	}
	file := &File{}
	offset := 0
	for offset < len(data) {
		hdu, next, err := parseHDU(data, offset, len(file.HDUs))
		if err != nil {
			return nil, fmt.Errorf("hdu %d: %w", len(file.HDUs), err)
		}
		file.HDUs = append(file.HDUs, hdu)
		offset = next
	}
	if len(file.HDUs) == 0 {
		return nil, errors.New("no header-data units")
	}
	return file, nil
}

func parseHDU(data []byte, offset, index int) (HDU, int, error) {
	cards, dataStart, err := readHeader(data, offset)
	if err != nil {
		return HDU{}, 0, err
	}
	header := newHeader(cards)

	if index == 0 {
		if ok, _ := header.Logical("SIMPLE"); !ok {
			return HDU{}, 0, errors.New("primary header lacks SIMPLE = T")
		}
	} else if !header.Has("XTENSION") {
		return HDU{}, 0, errors.New("extension header lacks XTENSION")
	}

	hdu := HDU{
		Index:  index,
		Name:   header.Str("EXTNAME"),
		Header: header,
	}

	size, err := dataSize(header)
	if err != nil {
		return HDU{}, 0, err
	}
	dataEnd := dataStart + size
	if dataEnd > len(data) {
		return HDU{}, 0, fmt.Errorf("truncated data: need %d bytes, have %d", size, len(data)-dataStart)
	}
	payload := data[dataStart:dataEnd]

	xtension := strings.ToUpper(header.Str("XTENSION"))
	switch {
	case xtension == "BINTABLE":
		table, err := decodeTable(header, payload)
		if err != nil {
			return HDU{}, 0, err
		}
		hdu.Table = table
	case xtension == "" || xtension == "IMAGE":
		if size > 0 {
			image, err := decodeImage(header, payload)
			if err != nil {
				return HDU{}, 0, err
			}
			hdu.Image = image
		}
	default:
		return HDU{}, 0, fmt.Errorf("unsupported extension type %q", xtension)
	}

	next := dataStart + roundBlock(size)
	if next > len(data) {
		next = len(data)
	}
	return hdu, next, nil
}

// readHeader collects cards across blocks until the END record.
func readHeader(data []byte, offset int) ([]Card, int, error) {
	var cards []Card
	for {
		if offset+blockSize > len(data) {
			return nil, 0, errors.New("header runs past end of file")
		}
		block := data[offset : offset+blockSize]
		offset += blockSize
		for i := 0; i < blockSize; i += 80 {
			card, ok := parseCard(block[i : i+80])
			if !ok {
				continue
			}
			if card.Keyword == "END" {
				return cards, offset, nil
			}
			cards = append(cards, card)
		}
	}
}

// dataSize applies the standard sizing formula with PCOUNT/GCOUNT defaults.
func dataSize(h Header) (int, error) {
	bitpix, ok := h.Int("BITPIX")
	if !ok {
		return 0, errors.New("missing BITPIX")
	}
	switch bitpix {
	case 8, 16, 32, 64, -32, -64:
	default:
		return 0, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
	naxis, ok := h.Int("NAXIS")
	if !ok {
		return 0, errors.New("missing NAXIS")
	}
	if naxis == 0 {
		return 0, nil
	}
	elements := 1
	for i := 1; i <= naxis; i++ {
		n, ok := h.Int(fmt.Sprintf("NAXIS%d", i))
		if !ok || n < 0 {
			return 0, fmt.Errorf("missing or invalid NAXIS%d", i)
		}
		elements *= n
	}
	pcount, _ := h.Int("PCOUNT")
	gcount, ok := h.Int("GCOUNT")
	if !ok {
		gcount = 1
	}
	width := abs(bitpix) / 8
	return width * gcount * (pcount + elements), nil
}

func decodeImage(h Header, payload []byte) ([]float64, error) {
	bitpix, _ := h.Int("BITPIX")
	width := abs(bitpix) / 8
	n := len(payload) / width

	bscale := 1.0
	if v, ok := h.Float("BSCALE"); ok {
		bscale = v
	}
	bzero := 0.0
	if v, ok := h.Float("BZERO"); ok {
		bzero = v
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		raw := payload[i*width : (i+1)*width]
		var v float64
		switch bitpix {
		case 8:
			v = float64(raw[0])
		case 16:
			v = float64(int16(binary.BigEndian.Uint16(raw)))
		case 32:
			v = float64(int32(binary.BigEndian.Uint32(raw)))
		case 64:
			v = float64(int64(binary.BigEndian.Uint64(raw)))
		case -32:
			v = float64(math.Float32frombits(binary.BigEndian.Uint32(raw)))
		case -64:
			v = math.Float64frombits(binary.BigEndian.Uint64(raw))
		}
		out[i] = bscale*v + bzero
	}
	return out, nil
}

type fieldSpec struct {
	repeat int
	code   byte
	offset int
	width  int
}

func decodeTable(h Header, payload []byte) (*Table, error) {
	rowWidth, ok := h.Int("NAXIS1")
	if !ok {
		return nil, errors.New("table missing NAXIS1")
	}
	rows, ok := h.Int("NAXIS2")
	if !ok {
		return nil, errors.New("table missing NAXIS2")
	}
	nfields, ok := h.Int("TFIELDS")
	if !ok || nfields < 1 {
		return nil, errors.New("table missing TFIELDS")
	}

	specs := make([]fieldSpec, nfields)
	offset := 0
	for i := 0; i < nfields; i++ {
		form := h.Str(fmt.Sprintf("TFORM%d", i+1))
		spec, err := parseTForm(form)
		if err != nil {
			return nil, fmt.Errorf("TFORM%d: %w", i+1, err)
		}
		spec.offset = offset
		offset += spec.width * spec.repeat
		specs[i] = spec
	}
	if offset != rowWidth {
		return nil, fmt.Errorf("row width mismatch: fields sum to %d, NAXIS1 is %d", offset, rowWidth)
	}
	if rows*rowWidth > len(payload) {
		return nil, errors.New("table payload shorter than NAXIS1*NAXIS2")
	}

	table := &Table{Rows: rows, Columns: make([]TableColumn, nfields)}
	for i, spec := range specs {
		col := TableColumn{
			Name:   h.Str(fmt.Sprintf("TTYPE%d", i+1)),
			Unit:   h.Str(fmt.Sprintf("TUNIT%d", i+1)),
			Repeat: spec.repeat,
		}
		if spec.code != 'A' {
			col.Numeric = true
			col.Values = make([]float64, 0, rows*spec.repeat)
			for r := 0; r < rows; r++ {
				base := r*rowWidth + spec.offset
				for e := 0; e < spec.repeat; e++ {
					cell := payload[base+e*spec.width : base+(e+1)*spec.width]
					col.Values = append(col.Values, decodeCell(spec.code, cell))
				}
			}
		}
		table.Columns[i] = col
	}
	return table, nil
}

// parseTForm handles scalar and fixed-repeat forms of the numeric field
// codes plus A for character fields. Variable-length (P/Q) descriptors are
// out of scope.
func parseTForm(form string) (fieldSpec, error) {
	form = strings.TrimSpace(form)
	if form == "" {
		return fieldSpec{}, errors.New("empty")
	}
	i := 0
	for i < len(form) && form[i] >= '0' && form[i] <= '9' {
		i++
	}
	repeat := 1
	if i > 0 {
		n, err := strconv.Atoi(form[:i])
		if err != nil {
			return fieldSpec{}, err
		}
		repeat = n
	}
	if i >= len(form) {
		return fieldSpec{}, fmt.Errorf("no type code in %q", form)
	}
	code := form[i]
	width, ok := map[byte]int{'L': 1, 'B': 1, 'I': 2, 'J': 4, 'K': 8, 'E': 4, 'D': 8, 'A': 1}[code]
	if !ok {
		return fieldSpec{}, fmt.Errorf("unsupported type code %q", string(code))
	}
	return fieldSpec{repeat: repeat, code: code, width: width}, nil
}

func decodeCell(code byte, cell []byte) float64 {
	switch code {
	case 'L':
		if cell[0] == 'T' {
			return 1
		}
		return 0
	case 'B':
		return float64(cell[0])
	case 'I':
		return float64(int16(binary.BigEndian.Uint16(cell)))
	case 'J':
		return float64(int32(binary.BigEndian.Uint32(cell)))
	case 'K':
		return float64(int64(binary.BigEndian.Uint64(cell)))
	case 'E':
		return float64(math.Float32frombits(binary.BigEndian.Uint32(cell)))
	case 'D':
		return math.Float64frombits(binary.BigEndian.Uint64(cell))
	}
	return math.NaN()
}

func roundBlock(n int) int {
	if n%blockSize == 0 {
		return n
	}
	return n + blockSize - n%blockSize
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
