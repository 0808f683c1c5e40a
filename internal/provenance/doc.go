// Package provenance models the append-only audit trail attached to every
// canonical spectrum. Each event pairs a kind tag with a strongly typed
// payload so detection decisions and transforms replay bit-for-bit from a
// serialized manifest.
package provenance
