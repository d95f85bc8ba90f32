package index

// Index defines a generic vector index keyed by storage-assigned chunk ids.
// It enables building from (id, embedding) pairs, kNN queries, and binary
// serialization for persistence.
type Index interface {
	// Build constructs the index from the given ids and vectors.
	// ids and vectors must have the same length; vectors must share one
	// dimension.
	Build(ids []int64, vectors [][]float32) error

	// Query runs a kNN search with the provided query vector and returns up
	// to k matches as parallel slices of ids and scores, where higher score
	// means more similar (cosine similarity). Matches are ordered score
	// descending with ascending-id tie-break, so results are deterministic.
	Query(query []float32, k int) (ids []int64, scores []float64, err error)

	// Len reports the number of indexed vectors.
	Len() int

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}
