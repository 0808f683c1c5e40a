// Package textutil provides header-label slugging, unit-text
// canonicalization, and display-label helpers shared by the detection and
// ingestion pipeline.
package textutil
