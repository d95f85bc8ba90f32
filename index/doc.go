// Package index defines a minimal abstraction for vector indexes that can be
// built from stored chunk embeddings, queried for kNN, and serialized for
// persistence alongside the chunk table.
package index
