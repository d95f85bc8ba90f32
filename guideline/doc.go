// Package guideline implements the guideline retrieval engine: document
// ingestion (chunking, embedding, transactional persistence) and ranked
// similarity queries with category/tag filtering over a SQLite-backed vector
// store. Unfiltered queries may be served by an in-memory brute-force index;
// when the index is unavailable they degrade to a full SQL scan ordered by
// the vec_similarity scalar function.
package guideline
