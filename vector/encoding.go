package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodedLen returns the BLOB size in bytes of an embedding with the given
// dimension. Schema bootstrap uses it to pin the embedding column to a fixed
// dimension via a CHECK constraint.
func EncodedLen(dim int) int { return dim * 4 }

// EncodeEmbedding encodes a slice of float32 values into a BLOB suitable for
// storage in SQLite: a little-endian sequence of IEEE 754 float32 values
// without a length prefix; the dimension is derived from the BLOB size on
// decode. An empty embedding encodes to nil.
func EncodeEmbedding(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	b := make([]byte, EncodedLen(len(vec)))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b, nil
}

// DecodeEmbedding decodes a BLOB produced by EncodeEmbedding back into a
// slice of float32 values.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
