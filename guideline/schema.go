package guideline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/viant/guideline-vec/index/bruteforce"
	"github.com/viant/guideline-vec/vector"
)

// SchemaStatus reports the two-phase schema bootstrap: the chunk table is
// mandatory, the similarity index is best effort.
type SchemaStatus struct {
	// IndexReady is true when the brute-force index was loaded or rebuilt
	// successfully. When false the store still works; queries take the full
	// scan path and IndexErr holds the bootstrap failure.
	IndexReady bool
	IndexErr   error
}

// EnsureSchema creates the chunk table and the index sidecar table if they do
// not exist, then restores the similarity index from its persisted image,
// rebuilding from the chunk rows when the image is missing or stale. A table
// failure wraps ErrSchema; an index failure is downgraded to a degraded-mode
// status.
func (s *Store) EnsureSchema(ctx context.Context) (SchemaStatus, error) {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_name TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	category TEXT,
	tags TEXT NOT NULL DEFAULT '[]',
	text_content TEXT NOT NULL,
	embedding BLOB NOT NULL CHECK (length(embedding) = %d)
)`, s.cfg.Table, vector.EncodedLen(s.cfg.EmbeddingDim))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return SchemaStatus{}, fmt.Errorf("%w: create table %s: %v", ErrSchema, s.cfg.Table, err)
	}

	sidecar := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_index (
	table_name TEXT PRIMARY KEY,
	idx BLOB NOT NULL
)`, s.cfg.Table)
	if _, err := s.db.ExecContext(ctx, sidecar); err != nil {
		return SchemaStatus{IndexReady: false, IndexErr: err}, nil
	}

	if err := s.restoreIndex(ctx); err != nil {
		return SchemaStatus{IndexReady: false, IndexErr: err}, nil
	}
	return SchemaStatus{IndexReady: true}, nil
}

// restoreIndex prefers the persisted index image and falls back to a full
// rebuild when the image is absent, corrupt, or out of step with the chunk
// rows.
func (s *Store) restoreIndex(ctx context.Context) error {
	count, err := s.rowCount(ctx)
	if err != nil {
		return err
	}
	idx, err := s.loadIndex(ctx)
	if err == nil && idx.Len() == count {
		s.mu.Lock()
		s.idx = idx
		s.indexReady = true
		s.mu.Unlock()
		return nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.log.WithError(err).Debug("persisted index image unusable, rebuilding")
	}
	return s.rebuildIndex(ctx)
}

// rebuildIndex scans all persisted embeddings, rebuilds the brute-force
// index, persists its serialized form to the sidecar table, and swaps it in
// under the write lock.
func (s *Store) rebuildIndex(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, embedding FROM %s ORDER BY id`, s.cfg.Table))
	if err != nil {
		return fmt.Errorf("scan embeddings: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var vectors [][]float32
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return fmt.Errorf("scan embedding row: %w", err)
		}
		vec, err := vector.DecodeEmbedding(blob)
		if err != nil {
			return fmt.Errorf("decode embedding for id %d: %w", id, err)
		}
		ids = append(ids, id)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("scan embeddings: %w", err)
	}

	idx := &bruteforce.Index{}
	if err := idx.Build(ids, vectors); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := s.persistIndex(ctx, idx); err != nil {
		return err
	}

	s.mu.Lock()
	s.idx = idx
	s.indexReady = true
	s.mu.Unlock()
	return nil
}

func (s *Store) rowCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT COUNT(*) FROM %s`, s.cfg.Table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return count, nil
}

func (s *Store) persistIndex(ctx context.Context, idx *bruteforce.Index) error {
	blob, err := idx.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT OR REPLACE INTO %s_index(table_name, idx) VALUES(?, ?)`, s.cfg.Table),
		s.cfg.Table, blob)
	if err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}

func (s *Store) loadIndex(ctx context.Context) (*bruteforce.Index, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT idx FROM %s_index WHERE table_name = ?`, s.cfg.Table),
		s.cfg.Table).Scan(&blob)
	if err != nil {
		return nil, err
	}
	idx := &bruteforce.Index{}
	if err := idx.UnmarshalBinary(blob); err != nil {
		return nil, fmt.Errorf("restore index: %w", err)
	}
	return idx, nil
}
