package vector

import "testing"

func TestEncodeDecodeEmbedding(t *testing.T) {
	in := []float32{0.25, -1, 3.5, 0}
	b, err := EncodeEmbedding(in)
	if err != nil {
		t.Fatalf("EncodeEmbedding failed: %v", err)
	}
	if len(b) != EncodedLen(len(in)) {
		t.Fatalf("encoded length = %d, want %d", len(b), EncodedLen(len(in)))
	}
	out, err := DecodeEmbedding(b)
	if err != nil {
		t.Fatalf("DecodeEmbedding failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("decoded dim = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("value[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestEncodeEmbedding_Empty(t *testing.T) {
	b, err := EncodeEmbedding(nil)
	if err != nil || b != nil {
		t.Fatalf("EncodeEmbedding(nil) = %v, %v; want nil, nil", b, err)
	}
	v, err := DecodeEmbedding(nil)
	if err != nil || v != nil {
		t.Fatalf("DecodeEmbedding(nil) = %v, %v; want nil, nil", v, err)
	}
}

func TestDecodeEmbedding_InvalidLength(t *testing.T) {
	if _, err := DecodeEmbedding([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for blob length not a multiple of 4")
	}
}
