package guideline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/guideline-vec/embedder"
	"github.com/viant/guideline-vec/vector"
)

// DefaultTopK caps result sets when the caller does not ask for a size.
const DefaultTopK = 4

// QueryOptions narrows and sizes a similarity query. Category and Tags are
// conjunctive: a row must match the category exactly and share at least one
// tag. A zero TopK means DefaultTopK.
type QueryOptions struct {
	TopK     int
	Category string
	Tags     []string
}

// Snippet is one ranked query hit. Similarity is cosine similarity in
// [-1, 1]; results are ordered by Similarity descending with ascending ID as
// the tie-break.
type Snippet struct {
	ID           int64
	DocumentName string
	ChunkIndex   int
	Category     string
	Tags         []string
	TextContent  string
	Similarity   float64
}

// Query embeds queryText and returns the top matching chunks, most similar
// first. An empty slice with a nil error means nothing matched.
func (s *Store) Query(ctx context.Context, queryText string, options QueryOptions) ([]Snippet, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, fmt.Errorf("%w: query text is empty", ErrInvalidArgument)
	}
	if options.TopK < 0 {
		return nil, fmt.Errorf("%w: top_k must not be negative, got %d", ErrInvalidArgument, options.TopK)
	}
	if options.TopK == 0 {
		options.TopK = DefaultTopK
	}

	embedCtx, cancel := withTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()
	query, err := s.provider.EmbedOne(embedCtx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if err := embedder.ValidateVectors([][]float32{query}, s.cfg.EmbeddingDim, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	queryCtx, cancelQuery := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancelQuery()

	if options.Category == "" && len(options.Tags) == 0 {
		if snippets, ok, err := s.queryIndexed(queryCtx, query, options.TopK); err != nil {
			return nil, err
		} else if ok {
			return snippets, nil
		}
	}
	return s.queryScan(queryCtx, query, options)
}

// queryIndexed serves an unfiltered query from the in-memory index, then
// fetches the matched rows by id. ok is false when the index is unavailable
// or out of step with the table, in which case the caller falls back to the
// scan path.
func (s *Store) queryIndexed(ctx context.Context, query []float32, topK int) ([]Snippet, bool, error) {
	s.mu.RLock()
	idx, ready := s.idx, s.indexReady
	s.mu.RUnlock()
	if !ready || idx == nil {
		return nil, false, nil
	}
	ids, scores, err := idx.Query(query, topK)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if len(ids) == 0 {
		return []Snippet{}, true, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, document_name, chunk_index, COALESCE(category, ''), tags, text_content
		 FROM %s WHERE id IN (%s)`, s.cfg.Table, placeholders), args...)
	if err != nil {
		return nil, false, fmt.Errorf("%w: fetch indexed rows: %v", ErrQuery, err)
	}
	defer rows.Close()

	byID := make(map[int64]Snippet, len(ids))
	for rows.Next() {
		var snippet Snippet
		var tagsJSON string
		if err := rows.Scan(&snippet.ID, &snippet.DocumentName, &snippet.ChunkIndex, &snippet.Category, &tagsJSON, &snippet.TextContent); err != nil {
			return nil, false, fmt.Errorf("%w: scan row: %v", ErrQuery, err)
		}
		if snippet.Tags, err = decodeTags(tagsJSON); err != nil {
			return nil, false, fmt.Errorf("%w: row %d: %v", ErrQuery, snippet.ID, err)
		}
		byID[snippet.ID] = snippet
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if len(byID) != len(ids) {
		// Index and table disagree, likely a stale image; the scan path is
		// always authoritative.
		return nil, false, nil
	}

	snippets := make([]Snippet, len(ids))
	for i, id := range ids {
		snippet := byID[id]
		snippet.Similarity = scores[i]
		snippets[i] = snippet
	}
	return snippets, true, nil
}

// queryScan ranks rows in SQL via the vec_similarity scalar function,
// applying the category and tag filters when present.
func (s *Store) queryScan(ctx context.Context, query []float32, options QueryOptions) ([]Snippet, error) {
	blob, err := vector.EncodeEmbedding(query)
	if err != nil {
		return nil, fmt.Errorf("%w: encode query vector: %v", ErrQuery, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb,
		`SELECT t.id, t.document_name, t.chunk_index, COALESCE(t.category, ''), t.tags, t.text_content,
		vec_similarity(t.embedding, ?) AS similarity FROM %s t`, s.cfg.Table)
	args := []any{blob}

	var conditions []string
	if options.Category != "" {
		conditions = append(conditions, "t.category = ?")
		args = append(args, options.Category)
	}
	if len(options.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(options.Tags)), ",")
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM json_each(t.tags) WHERE json_each.value IN (%s))", placeholders))
		for _, tag := range options.Tags {
			args = append(args, tag)
		}
	}
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY similarity DESC, t.id LIMIT ?")
	args = append(args, options.TopK)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer rows.Close()

	snippets := []Snippet{}
	for rows.Next() {
		var snippet Snippet
		var tagsJSON string
		if err := rows.Scan(&snippet.ID, &snippet.DocumentName, &snippet.ChunkIndex, &snippet.Category, &tagsJSON, &snippet.TextContent, &snippet.Similarity); err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", ErrQuery, err)
		}
		if snippet.Tags, err = decodeTags(tagsJSON); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrQuery, snippet.ID, err)
		}
		snippets = append(snippets, snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return snippets, nil
}

func decodeTags(tagsJSON string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return nil, fmt.Errorf("decode tags %q: %w", tagsJSON, err)
	}
	return tags, nil
}
