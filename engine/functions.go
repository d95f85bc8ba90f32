package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/viant/guideline-vec/vector"
	sqlite "modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterVectorFunctions registers vec_similarity and vec_distance with the
// driver so they are available on connections opened after this call.
// Registration is process-wide and idempotent.
//
// vec_similarity(a, b) returns 1 - cosine_distance of two embedding BLOBs;
// vec_distance(a, b) returns the cosine distance. Both propagate NULL when
// either argument is NULL.
func RegisterVectorFunctions() error {
	registerOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction("vec_similarity", 2, vecSimilarityImpl); err != nil {
			registerErr = err
			return
		}
		registerErr = sqlite.RegisterDeterministicScalarFunction("vec_distance", 2, vecDistanceImpl)
	})
	return registerErr
}

func vecSimilarityImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	sim, ok, err := pairSimilarity("vec_similarity", args)
	if err != nil || !ok {
		return nil, err
	}
	return sim, nil
}

func vecDistanceImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	sim, ok, err := pairSimilarity("vec_distance", args)
	if err != nil || !ok {
		return nil, err
	}
	return 1 - sim, nil
}

// pairSimilarity decodes both arguments and computes cosine similarity.
// ok is false when either argument is NULL.
func pairSimilarity(fn string, args []driver.Value) (float64, bool, error) {
	if len(args) != 2 {
		return 0, false, fmt.Errorf("%s: expected 2 arguments, got %d", fn, len(args))
	}
	a, err := asEmbedding(fn, args[0])
	if err != nil {
		return 0, false, err
	}
	b, err := asEmbedding(fn, args[1])
	if err != nil {
		return 0, false, err
	}
	if a == nil || b == nil {
		return 0, false, nil
	}
	sim, err := vector.CosineSimilarity(a, b)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %v", fn, err)
	}
	return sim, true, nil
}

func asEmbedding(fn string, arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.DecodeEmbedding(v)
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T for embedding; want BLOB", fn, arg)
	}
}
