// Package ingest turns on-disk spectral products into canonical traces. The
// ASCII path sniffs delimiters and detects column roles; the FITS path walks
// header-data units for tables and axis keywords. Both converge on
// Canonicalize, which rebases every trace onto a vacuum-nanometer axis and
// records each transformation in the trace's provenance log.
package ingest
