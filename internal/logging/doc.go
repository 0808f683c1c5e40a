// Package logging builds the slog loggers used across the CLI: a compact
// console handler for interactive use and line-delimited JSON for scripted
// runs, selected by configuration.
package logging
