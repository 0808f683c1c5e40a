// Package config loads and validates the TOML configuration: where the
// session database and export bundles live, ingest defaults, archive fetch
// settings, and logging output. Missing files fall back to defaults so the
// CLI works without any configuration at all.
package config
