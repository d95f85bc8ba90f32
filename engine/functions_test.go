package engine

import (
	"math"
	"testing"

	"github.com/viant/guideline-vec/vector"
)

func mustEncode(t *testing.T, vec []float32) []byte {
	t.Helper()
	b, err := vector.EncodeEmbedding(vec)
	if err != nil {
		t.Fatalf("EncodeEmbedding failed: %v", err)
	}
	return b
}

func TestVecSimilarity(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	a := mustEncode(t, []float32{1, 0, 0})
	b := mustEncode(t, []float32{0, 1, 0})
	c := mustEncode(t, []float32{2, 0, 0})

	var sim float64
	if err := db.QueryRow(`SELECT vec_similarity(?, ?)`, a, b).Scan(&sim); err != nil {
		t.Fatalf("vec_similarity query failed: %v", err)
	}
	if math.Abs(sim) > 1e-6 {
		t.Errorf("similarity of orthogonal vectors = %v, want 0", sim)
	}

	if err := db.QueryRow(`SELECT vec_similarity(?, ?)`, a, c).Scan(&sim); err != nil {
		t.Fatalf("vec_similarity query failed: %v", err)
	}
	if math.Abs(sim-1) > 1e-6 {
		t.Errorf("similarity of parallel vectors = %v, want 1", sim)
	}
}

func TestVecDistance(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	a := mustEncode(t, []float32{1, 0})
	b := mustEncode(t, []float32{0, 1})

	var dist float64
	if err := db.QueryRow(`SELECT vec_distance(?, ?)`, a, b).Scan(&dist); err != nil {
		t.Fatalf("vec_distance query failed: %v", err)
	}
	if math.Abs(dist-1) > 1e-6 {
		t.Errorf("distance of orthogonal vectors = %v, want 1", dist)
	}
}

func TestVectorFunctions_NullPropagation(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	a := mustEncode(t, []float32{1, 0})
	var sim *float64
	if err := db.QueryRow(`SELECT vec_similarity(?, NULL)`, a).Scan(&sim); err != nil {
		t.Fatalf("vec_similarity with NULL failed: %v", err)
	}
	if sim != nil {
		t.Errorf("vec_similarity(a, NULL) = %v, want NULL", *sim)
	}
}

func TestVecSimilarity_DimensionMismatch(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	a := mustEncode(t, []float32{1, 0})
	b := mustEncode(t, []float32{1, 0, 0})
	var sim float64
	if err := db.QueryRow(`SELECT vec_similarity(?, ?)`, a, b).Scan(&sim); err == nil {
		t.Fatalf("expected error for mismatched dimensions, got similarity %v", sim)
	}
}

func TestVecSimilarity_OrderBy(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE items(id INTEGER PRIMARY KEY, embedding BLOB)`); err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	vecs := [][]float32{{0, 1}, {1, 0.1}, {1, 0}}
	for i, v := range vecs {
		if _, err := db.Exec(`INSERT INTO items(id, embedding) VALUES(?, ?)`, i+1, mustEncode(t, v)); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	query := mustEncode(t, []float32{1, 0})
	rows, err := db.Query(`SELECT id FROM items ORDER BY vec_similarity(embedding, ?) DESC, id`, query)
	if err != nil {
		t.Fatalf("ordered query failed: %v", err)
	}
	defer rows.Close()

	var got []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		got = append(got, id)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows error: %v", err)
	}
	want := []int{3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
