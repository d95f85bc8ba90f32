package bruteforce

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/viant/vec/search"

	"github.com/viant/guideline-vec/index"
)

// formatVersion tags the serialized layout so future formats can coexist.
const formatVersion = 1

// Ensure Index satisfies the index.Index contract.
var _ index.Index = (*Index)(nil)

// Index is a brute-force cosine-similarity index over int64 chunk ids.
type Index struct {
	ids  []int64
	vecs [][]float32
	dim  int
	mags []float32
}

// Build loads ids and vectors and precomputes magnitudes.
func (i *Index) Build(ids []int64, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("bruteforce: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		i.ids, i.vecs, i.mags, i.dim = nil, nil, nil, 0
		return nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return errors.New("bruteforce: vectors must not be empty")
	}
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("bruteforce: inconsistent vector dims %d vs %d", len(vectors[j]), dim)
		}
	}
	mags := make([]float32, len(vectors))
	for j := range vectors {
		mags[j] = search.Float32s(vectors[j]).Magnitude()
	}
	i.ids = append([]int64(nil), ids...)
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	i.mags = mags
	return nil
}

// Len reports the number of indexed vectors.
func (i *Index) Len() int { return len(i.ids) }

// Query returns up to k matches ordered by cosine similarity descending;
// equal scores are broken by ascending id so rankings are reproducible.
func (i *Index) Query(query []float32, k int) ([]int64, []float64, error) {
	if i.dim == 0 || len(i.vecs) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query), i.dim)
	}
	q := search.Float32s(query)
	qm := q.Magnitude()
	if qm == 0 {
		return nil, nil, errors.New("bruteforce: zero-magnitude query vector")
	}
	type scored struct {
		idx   int
		score float64
	}
	scoreds := make([]scored, 0, len(i.vecs))
	for j := range i.vecs {
		if i.mags[j] == 0 {
			continue
		}
		s := 1 - float64(q.CosineDistance(i.vecs[j]))
		if math.IsNaN(s) {
			continue
		}
		scoreds = append(scoreds, scored{idx: j, score: s})
	}
	sort.Slice(scoreds, func(a, b int) bool {
		if scoreds[a].score != scoreds[b].score {
			return scoreds[a].score > scoreds[b].score
		}
		return i.ids[scoreds[a].idx] < i.ids[scoreds[b].idx]
	})
	if k <= 0 || k > len(scoreds) {
		k = len(scoreds)
	}
	outIDs := make([]int64, k)
	outScores := make([]float64, k)
	for n := 0; n < k; n++ {
		outIDs[n] = i.ids[scoreds[n].idx]
		outScores[n] = scoreds[n].score
	}
	return outIDs, outScores, nil
}

// MarshalBinary stores: version(byte), dim(uint32), n(uint32), then for each
// item: id(int64), vec(float32[dim]). All little-endian.
func (i *Index) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 9+len(i.ids)*(8+4*i.dim))
	out = append(out, formatVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(i.dim))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(i.ids)))
	for idx, id := range i.ids {
		out = binary.LittleEndian.AppendUint64(out, uint64(id))
		for j := 0; j < i.dim; j++ {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(i.vecs[idx][j]))
		}
	}
	return out, nil
}

// UnmarshalBinary restores the index from bytes produced by MarshalBinary.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < 9 {
		return errors.New("bruteforce: invalid data")
	}
	if data[0] != formatVersion {
		return fmt.Errorf("bruteforce: unsupported format version %d", data[0])
	}
	dim := int(binary.LittleEndian.Uint32(data[1:5]))
	n := int(binary.LittleEndian.Uint32(data[5:9]))
	off := 9
	itemLen := 8 + 4*dim
	if n > 0 && (dim <= 0 || len(data)-off != n*itemLen) {
		return errors.New("bruteforce: truncated data")
	}
	ids := make([]int64, n)
	vecs := make([][]float32, n)
	for idx := 0; idx < n; idx++ {
		ids[idx] = int64(binary.LittleEndian.Uint64(data[off:]))
		off += 8
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vecs[idx] = vec
	}
	return i.Build(ids, vecs)
}
