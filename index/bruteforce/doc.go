// Package bruteforce provides a vector index that answers kNN queries by
// scanning all vectors and scoring via cosine similarity, with a compact
// binary format for persistence in the index sidecar table.
package bruteforce
