package fitsio_test

import (
	"testing"

	"spectrasuite/internal/fitsio"
)

func TestImageRoundTripWithAxisKeywords(t *testing.T) {
	flux := []float64{1.5, 2.25, 3.125, 4.0625}
	data := fitsio.NewBuilder().
		PrimaryImage(flux,
			fitsio.Num("CRVAL1", 4000),
			fitsio.Num("CDELT1", 1.25),
			fitsio.Num("CRPIX1", 1),
			fitsio.Str("CTYPE1", "WAVE"),
			fitsio.Str("CUNIT1", "Angstrom"),
		).
		Bytes()

	file, err := fitsio.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(file.HDUs) != 1 {
		t.Fatalf("hdu count = %d", len(file.HDUs))
	}
	hdu := file.HDUs[0]
	if len(hdu.Image) != len(flux) {
		t.Fatalf("image length = %d", len(hdu.Image))
	}
	for i, v := range flux {
		if hdu.Image[i] != v {
			t.Fatalf("pixel %d = %v, want %v", i, hdu.Image[i], v)
		}
	}
	if v, ok := hdu.Header.Float("CDELT1"); !ok || v != 1.25 {
		t.Fatalf("CDELT1 = %v, %v", v, ok)
	}
	if hdu.Header.Str("CTYPE1") != "WAVE" {
		t.Fatalf("CTYPE1 = %q", hdu.Header.Str("CTYPE1"))
	}
}

func TestBinaryTableRoundTrip(t *testing.T) {
	data := fitsio.NewBuilder().
		EmptyPrimary().
		AppendTable("COADD", []fitsio.BuilderColumn{
			{Name: "loglam", Values: []float64{3.6, 3.7, 3.8}},
			{Name: "flux", Unit: "erg/s/cm^2/A", Values: []float64{10, 11, 12}},
			{Name: "ivar", Values: []float64{4, 0, 16}},
		}).
		Bytes()

	file, err := fitsio.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(file.HDUs) != 2 {
		t.Fatalf("hdu count = %d", len(file.HDUs))
	}
	hdu := file.HDUs[1]
	if !hdu.IsTable() {
		t.Fatal("extension is not a table")
	}
	if hdu.Name != "COADD" {
		t.Fatalf("extname = %q", hdu.Name)
	}
	if hdu.Table.Rows != 3 {
		t.Fatalf("rows = %d", hdu.Table.Rows)
	}
	flux, ok := hdu.Table.Column("FLUX")
	if !ok {
		t.Fatal("flux column missing under case-insensitive lookup")
	}
	if flux.Unit != "erg/s/cm^2/A" {
		t.Fatalf("flux unit = %q", flux.Unit)
	}
	if flux.Values[2] != 12 {
		t.Fatalf("flux[2] = %v", flux.Values[2])
	}
	ivar, _ := hdu.Table.Column("ivar")
	if ivar.Values[1] != 0 {
		t.Fatalf("ivar[1] = %v", ivar.Values[1])
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := fitsio.Parse([]byte("not a container")); err == nil {
		t.Fatal("expected error for short input")
	}
	block := make([]byte, 2880)
	for i := range block {
		block[i] = 'x'
	}
	if _, err := fitsio.Parse(block); err == nil {
		t.Fatal("expected error for missing SIMPLE card")
	}
}

func TestParseRejectsTruncatedPayload(t *testing.T) {
	data := fitsio.NewBuilder().PrimaryImage([]float64{1, 2, 3}).Bytes()
	if _, err := fitsio.Parse(data[:2880]); err == nil {
		t.Fatal("expected error for missing data block")
	}
}
