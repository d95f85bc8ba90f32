package vector

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	c := []float32{2, 0}

	// Orthogonal vectors -> similarity 0
	if sim, err := CosineSimilarity(a, b); err != nil || math.Abs(sim) > 1e-6 {
		t.Fatalf("CosineSimilarity(a,b) = %v, %v; want 0, nil", sim, err)
	}

	// Parallel vectors -> similarity 1 regardless of magnitude
	if sim, err := CosineSimilarity(a, c); err != nil || math.Abs(sim-1) > 1e-6 {
		t.Fatalf("CosineSimilarity(a,c) = %v, %v; want 1, nil", sim, err)
	}
}

func TestCosineSimilarity_Errors(t *testing.T) {
	if _, err := CosineSimilarity([]float32{1}, []float32{1, 2}); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
	if _, err := CosineSimilarity(nil, nil); err == nil {
		t.Fatalf("expected error on empty vectors")
	}
	if _, err := CosineSimilarity([]float32{0, 0}, []float32{1, 0}); err == nil {
		t.Fatalf("expected error on zero-magnitude vector")
	}
}

func TestCosineDistance(t *testing.T) {
	d, err := CosineDistance([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("CosineDistance failed: %v", err)
	}
	if math.Abs(d-1) > 1e-6 {
		t.Fatalf("CosineDistance of orthogonal vectors = %v, want 1", d)
	}
}
