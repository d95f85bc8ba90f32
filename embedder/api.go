package embedder

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Provider maps text to fixed-dimension embedding vectors.
type Provider interface {
	// EmbedOne embeds a single text.
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// EmbedMany embeds a batch of texts, preserving input order.
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension reports the vector dimension every embedding has.
	Dimension() int
}

// ValidateVectors checks that the provider returned one vector per input,
// that every vector has the expected dimension, and that no vector has zero
// magnitude. A zero vector has no direction, so cosine similarity against it
// is undefined; rejecting it here keeps such vectors out of the store
// entirely instead of failing individual queries later.
func ValidateVectors(vecs [][]float32, dim, count int) error {
	if len(vecs) != count {
		return fmt.Errorf("embedder: got %d vectors for %d inputs", len(vecs), count)
	}
	for i, v := range vecs {
		if len(v) != dim {
			return fmt.Errorf("embedder: vector %d has dimension %d, want %d", i, len(v), dim)
		}
		zero := true
		for _, x := range v {
			if x != 0 {
				zero = false
				break
			}
		}
		if zero {
			return fmt.Errorf("embedder: vector %d has zero magnitude", i)
		}
	}
	return nil
}

// embedInBatches splits texts into sub-batches of at most batch items and
// embeds them concurrently (at most parallel in flight) via fn, reassembling
// the results in input order. A single sub-batch is embedded inline.
func embedInBatches(ctx context.Context, texts []string, batch, parallel int, fn func(ctx context.Context, texts []string) ([][]float32, error)) ([][]float32, error) {
	if batch <= 0 || len(texts) <= batch {
		return fn(ctx, texts)
	}
	if parallel <= 0 {
		parallel = 1
	}
	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for start := 0; start < len(texts); start += batch {
		end := start + batch
		if end > len(texts) {
			end = len(texts)
		}
		start := start
		g.Go(func() error {
			vecs, err := fn(gctx, texts[start:end])
			if err != nil {
				return err
			}
			if len(vecs) != end-start {
				return fmt.Errorf("embedder: batch returned %d vectors for %d inputs", len(vecs), end-start)
			}
			copy(out[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
