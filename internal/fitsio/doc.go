// Package fitsio implements the subset of the FITS container format the
// ingestion pipeline needs: 2880-byte blocks, header cards, primary and
// IMAGE extensions with scalar pixel types, and BINTABLE extensions with
// scalar numeric fields. All integer and floating payloads decode to
// float64 with BSCALE/BZERO applied.
//
// The format is fully specified and stable since 1981; the reader rejects
// anything outside the supported subset instead of guessing.
package fitsio
