package chunker

import (
	"fmt"
	"strings"
)

// Default window parameters used by the guideline store.
const (
	DefaultSize    = 500
	DefaultOverlap = 50
)

// Split splits text into overlapping word windows of size words, each window
// sharing overlap words with its predecessor. Words are whitespace-delimited;
// each chunk is the space-joined words of its window, and the slice order is
// the chunk's future chunk_index.
//
// Text with fewer words than size yields exactly one chunk. The window start
// advances by size - overlap each step; the last window is the first one to
// reach the end of the word sequence, so for N words the chunk count is
// ceil(max(N - overlap, 1) / (size - overlap)).
//
// Split is a pure function. It fails on blank text, non-positive size,
// negative overlap, or overlap >= size (which would stall the window).
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunker: size must be positive, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunker: overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than size %d", overlap, size)
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, fmt.Errorf("chunker: text contains no words")
	}

	step := size - overlap
	var chunks []string
	for start := 0; ; start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks, nil
}
