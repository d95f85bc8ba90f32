// Package chunker splits document text into overlapping fixed-size word
// windows so long documents remain retrievable at fine granularity without
// losing local context at chunk boundaries.
package chunker
