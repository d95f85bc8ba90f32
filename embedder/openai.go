package embedder

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIModel = openai.EmbeddingModelTextEmbedding3Small

	// The embeddings endpoint caps the number of inputs per request; larger
	// ingests are split into concurrent sub-batches below this size.
	openAIMaxBatch = 256
)

// OpenAI embeds text via an OpenAI-compatible embeddings API.
type OpenAI struct {
	client   openai.Client
	model    openai.EmbeddingModel
	dim      int
	batch    int
	parallel int
}

// OpenAIOption customizes an OpenAI embedder.
type OpenAIOption func(*OpenAI)

// WithOpenAIModel overrides the embedding model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *OpenAI) { o.model = openai.EmbeddingModel(model) }
}

// WithOpenAIBatch overrides the sub-batch size and the number of concurrent
// sub-batch requests.
func WithOpenAIBatch(batch, parallel int) OpenAIOption {
	return func(o *OpenAI) {
		o.batch = batch
		o.parallel = parallel
	}
}

// NewOpenAI creates an OpenAI-backed embedder producing vectors of the given
// dimension. Extra request options (base URL, API key, timeouts) are passed
// through to the underlying client.
func NewOpenAI(dim int, opts []option.RequestOption, options ...OpenAIOption) (*OpenAI, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("embedder: dimension must be positive, got %d", dim)
	}
	o := &OpenAI{
		client:   openai.NewClient(opts...),
		model:    defaultOpenAIModel,
		dim:      dim,
		batch:    openAIMaxBatch,
		parallel: 4,
	}
	for _, opt := range options {
		opt(o)
	}
	return o, nil
}

// Dimension implements Provider.
func (o *OpenAI) Dimension() int { return o.dim }

// EmbedOne implements Provider.
func (o *OpenAI) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedMany implements Provider. Batches beyond the API limit are embedded as
// concurrent sub-batches and reassembled in input order.
func (o *OpenAI) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return embedInBatches(ctx, texts, o.batch, o.parallel, o.embed)
}

func (o *OpenAI) embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      o.model,
		Dimensions: openai.Int(int64(o.dim)),
	})
	if err != nil {
		return nil, fmt.Errorf("embedder: openai embeddings request: %w", err)
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, fmt.Errorf("embedder: openai returned out-of-range index %d", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[d.Index] = vec
	}
	if err := ValidateVectors(out, o.dim, len(texts)); err != nil {
		return nil, err
	}
	return out, nil
}
