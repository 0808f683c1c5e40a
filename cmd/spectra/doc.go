// Command spectra is the CLI for the spectral ingestion pipeline: ingest
// local or archive products into a persistent session, inspect traces and
// their provenance, and export replayable bundles.
package main
