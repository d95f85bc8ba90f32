package tool

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/viant/guideline-vec/engine"
	"github.com/viant/guideline-vec/guideline"
)

type wordEmbedder struct{ dim int }

func (w *wordEmbedder) Dimension() int { return w.dim }

func (w *wordEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, w.dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		digest := fnv.New32a()
		digest.Write([]byte(word))
		vec[digest.Sum32()%uint32(w.dim)]++
	}
	return vec, nil
}

func (w *wordEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = w.EmbedOne(ctx, text)
	}
	return out, nil
}

func newTestTool(t *testing.T) *GuidelineSearch {
	t.Helper()
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	store, err := guideline.New(db, &wordEmbedder{dim: 32},
		guideline.Config{EmbeddingDim: 32, ChunkSize: 20, ChunkOverlap: 0},
		guideline.WithLogger(log))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()
	if _, err := store.AddDocument(ctx, "refunds", "refunds are issued within five business days", "policy", []string{"refunds"}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if _, err := store.AddDocument(ctx, "logos", "only the approved logo may appear on packaging", "style", []string{"branding"}); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	return NewGuidelineSearch(store)
}

func TestGuidelineSearch_Metadata(t *testing.T) {
	search := newTestTool(t)
	if search.Name() != "guideline_search" {
		t.Fatalf("Name = %q", search.Name())
	}
	if search.Description() == "" {
		t.Fatalf("Description is empty")
	}
}

func TestInvoke_ReturnsConcatenatedText(t *testing.T) {
	search := newTestTool(t)
	out, err := search.Invoke(context.Background(), map[string]any{
		"query": "refunds are issued within five business days",
		"top_k": float64(2),
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	parts := strings.Split(out, "\n\n")
	if len(parts) != 2 {
		t.Fatalf("got %d passages, want 2:\n%s", len(parts), out)
	}
	if parts[0] != "refunds are issued within five business days" {
		t.Fatalf("top passage = %q", parts[0])
	}
}

func TestInvoke_Filters(t *testing.T) {
	search := newTestTool(t)
	out, err := search.Invoke(context.Background(), map[string]any{
		"query":    "packaging rules",
		"category": "style",
		"tags":     []any{"branding"},
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if out != "only the approved logo may appear on packaging" {
		t.Fatalf("out = %q", out)
	}
}

func TestInvoke_NoMatches(t *testing.T) {
	search := newTestTool(t)
	out, err := search.Invoke(context.Background(), map[string]any{
		"query":    "anything",
		"category": "nonexistent",
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if out != NoResults {
		t.Fatalf("out = %q, want %q", out, NoResults)
	}
}

func TestInvoke_ArgumentErrors(t *testing.T) {
	search := newTestTool(t)
	ctx := context.Background()
	cases := []map[string]any{
		{},
		{"query": 7},
		{"query": "ok", "top_k": "four"},
		{"query": "ok", "top_k": 1.5},
		{"query": "ok", "category": 3},
		{"query": "ok", "tags": "refunds"},
		{"query": "ok", "tags": []any{"refunds", 2}},
	}
	for i, args := range cases {
		if _, err := search.Invoke(ctx, args); !errors.Is(err, guideline.ErrInvalidArgument) {
			t.Errorf("case %d: err = %v, want ErrInvalidArgument", i, err)
		}
	}
}

func TestRender(t *testing.T) {
	if got := Render(nil); got != NoResults {
		t.Fatalf("Render(nil) = %q", got)
	}
	got := Render([]guideline.Snippet{{TextContent: "a"}, {TextContent: "b"}})
	if got != "a\n\nb" {
		t.Fatalf("Render = %q", got)
	}
}
