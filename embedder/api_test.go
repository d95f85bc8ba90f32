package embedder

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestValidateVectors(t *testing.T) {
	ok := [][]float32{{1, 2}, {3, 4}}
	if err := ValidateVectors(ok, 2, 2); err != nil {
		t.Fatalf("ValidateVectors on valid input failed: %v", err)
	}
	if err := ValidateVectors(ok, 2, 3); err == nil {
		t.Fatalf("expected error for vector count mismatch")
	}
	if err := ValidateVectors([][]float32{{1}, {2, 3}}, 2, 2); err == nil {
		t.Fatalf("expected error for dimension mismatch")
	}
	if err := ValidateVectors([][]float32{{1, 2}, {0, 0}}, 2, 2); err == nil {
		t.Fatalf("expected error for zero-magnitude vector")
	}
}

func TestEmbedInBatches_Order(t *testing.T) {
	texts := make([]string, 10)
	for i := range texts {
		texts[i] = string(rune('a' + i))
	}
	var mu sync.Mutex
	var batches int
	fn := func(_ context.Context, in []string) ([][]float32, error) {
		mu.Lock()
		batches++
		mu.Unlock()
		out := make([][]float32, len(in))
		for i, s := range in {
			out[i] = []float32{float32(s[0])}
		}
		return out, nil
	}

	vecs, err := embedInBatches(context.Background(), texts, 3, 2, fn)
	if err != nil {
		t.Fatalf("embedInBatches failed: %v", err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vecs), len(texts))
	}
	for i := range texts {
		if vecs[i][0] != float32(texts[i][0]) {
			t.Fatalf("vector %d out of order: got %v", i, vecs[i])
		}
	}
	if batches != 4 {
		t.Errorf("batches = %d, want 4", batches)
	}
}

func TestEmbedInBatches_SingleBatchInline(t *testing.T) {
	var calls int
	fn := func(_ context.Context, in []string) ([][]float32, error) {
		calls++
		out := make([][]float32, len(in))
		for i := range in {
			out[i] = []float32{1}
		}
		return out, nil
	}
	if _, err := embedInBatches(context.Background(), []string{"a", "b"}, 5, 2, fn); err != nil {
		t.Fatalf("embedInBatches failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestEmbedInBatches_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	fn := func(_ context.Context, in []string) ([][]float32, error) {
		if in[0] == "d" {
			return nil, boom
		}
		out := make([][]float32, len(in))
		for i := range in {
			out[i] = []float32{1}
		}
		return out, nil
	}
	_, err := embedInBatches(context.Background(), []string{"a", "b", "c", "d", "e", "f"}, 3, 1, fn)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}
