package store

import (
	"encoding/binary"
	"math"
)

// Arrays persist as packed little-endian float64 blobs.

func encodeFloats(values []float64) []byte {
	out := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

func decodeFloats(blob []byte) []float64 {
	out := make([]float64, len(blob)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return out
}
