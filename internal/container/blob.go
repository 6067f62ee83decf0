package container

import (
	"encoding/binary"
	"fmt"
	"math"
)

// decodeFloats interprets an array blob as little-endian float64 samples.
func decodeFloats(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("array blob length %d is not a multiple of 8", len(blob))
	}
	vals := make([]float64, len(blob)/8)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return vals, nil
}
