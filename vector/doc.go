// Package vector provides the embedding primitives shared by the guideline
// store and its kNN index: a compact BLOB codec for float32 embeddings and
// cosine similarity/distance helpers built on viant/vec.
package vector
