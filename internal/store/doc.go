// Package store persists a session to SQLite so trace collections survive
// across CLI invocations. Arrays are stored as little-endian float64 blobs;
// metadata and provenance travel as JSON columns. A file lock next to the
// database keeps concurrent invocations from interleaving writes.
package store
