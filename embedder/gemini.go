package embedder

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel produces 768-dimension embeddings, matching the store's
// default embedding dimension.
const DefaultGeminiModel = "text-embedding-004"

// Gemini embeds text via the Gemini embedding API.
type Gemini struct {
	client *genai.Client
	model  *genai.EmbeddingModel
	dim    int
}

// NewGemini creates a Gemini-backed embedder for the given model and expected
// dimension. Close releases the underlying client.
func NewGemini(ctx context.Context, apiKey, model string, dim int) (*Gemini, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("embedder: dimension must be positive, got %d", dim)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("embedder: gemini client: %w", err)
	}
	return &Gemini{client: client, model: client.EmbeddingModel(model), dim: dim}, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error { return g.client.Close() }

// Dimension implements Provider.
func (g *Gemini) Dimension() int { return g.dim }

// EmbedOne implements Provider.
func (g *Gemini) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embedder: gemini embed content: %w", err)
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("embedder: gemini returned no embedding")
	}
	vec := resp.Embedding.Values
	if len(vec) != g.dim {
		return nil, fmt.Errorf("embedder: gemini vector has dimension %d, want %d", len(vec), g.dim)
	}
	return vec, nil
}

// EmbedMany implements Provider using a single batch request.
func (g *Gemini) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	batch := g.model.NewBatch()
	for _, t := range texts {
		batch = batch.AddContent(genai.Text(t))
	}
	resp, err := g.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("embedder: gemini batch embed: %w", err)
	}
	out := make([][]float32, 0, len(texts))
	for _, e := range resp.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("embedder: gemini returned a nil embedding")
		}
		out = append(out, e.Values)
	}
	if err := ValidateVectors(out, g.dim, len(texts)); err != nil {
		return nil, err
	}
	return out, nil
}
