package guideline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/viant/guideline-vec/chunker"
	"github.com/viant/guideline-vec/embedder"
	"github.com/viant/guideline-vec/engine"
	"github.com/viant/guideline-vec/index/bruteforce"
	"github.com/viant/guideline-vec/vector"
)

// Store persists guideline documents as embedded, indexed chunks and answers
// ranked similarity queries. Its public operations are independent
// request/response calls safe for concurrent use; each call draws its own
// connection from the pool and all mutation is append-only.
type Store struct {
	db       *sql.DB
	cfg      Config
	provider embedder.Provider
	log      logrus.FieldLogger

	mu         sync.RWMutex
	idx        *bruteforce.Index
	indexReady bool

	schema SchemaStatus
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger overrides the store's logger (logrus standard logger by
// default).
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a Store over an existing database handle and runs the schema
// bootstrap once. Table bootstrap failure is fatal (ErrSchema); index
// bootstrap failure degrades queries to a full scan and is reported via
// SchemaStatus.
func New(db *sql.DB, provider embedder.Provider, cfg Config, options ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db is nil", ErrConfiguration)
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: embedding provider is nil", ErrConfiguration)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dim := provider.Dimension(); dim != cfg.EmbeddingDim {
		return nil, fmt.Errorf("%w: provider dimension %d != configured dimension %d", ErrConfiguration, dim, cfg.EmbeddingDim)
	}
	if err := engine.RegisterVectorFunctions(); err != nil {
		return nil, fmt.Errorf("%w: register vector functions: %v", ErrConfiguration, err)
	}

	s := &Store{db: db, cfg: cfg, provider: provider, log: logrus.StandardLogger()}
	for _, option := range options {
		option(s)
	}

	status, err := s.EnsureSchema(context.Background())
	if err != nil {
		return nil, err
	}
	s.schema = status
	return s, nil
}

// Open opens the SQLite database at cfg.Path and constructs a Store over it.
func Open(provider embedder.Provider, cfg Config, options ...Option) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: database path is empty", ErrConfiguration)
	}
	db, err := engine.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrConfiguration, cfg.Path, err)
	}
	s, err := New(db, provider, cfg, options...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// SchemaStatus reports the outcome of the construction-time schema bootstrap.
func (s *Store) SchemaStatus() SchemaStatus { return s.schema }

// Config returns the store's effective configuration.
func (s *Store) Config() Config { return s.cfg }

// AddDocument chunks text with the configured window, embeds all chunks in
// one provider batch, and persists them in a single all-or-nothing
// transaction. It returns the storage-assigned chunk ids in chunk order.
//
// Re-ingesting the same document appends a new independent chunk set; there
// is no dedup by name or content.
func (s *Store) AddDocument(ctx context.Context, documentName, textContent, category string, tags []string) ([]int64, error) {
	if strings.TrimSpace(documentName) == "" {
		return nil, fmt.Errorf("%w: document name is empty", ErrInvalidArgument)
	}
	chunks, err := chunker.Split(textContent, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	embedCtx, cancel := withTimeout(ctx, s.cfg.EmbedTimeout)
	defer cancel()
	vecs, err := s.provider.EmbedMany(embedCtx, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if err := embedder.ValidateVectors(vecs, s.cfg.EmbeddingDim, len(chunks)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	tagsJSON, err := encodeTags(tags)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIngest, err)
	}

	dbCtx, cancelTx := withTimeout(ctx, s.cfg.QueryTimeout)
	defer cancelTx()
	tx, err := s.db.BeginTx(dbCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrIngest, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(dbCtx, fmt.Sprintf(
		`INSERT INTO %s(document_name, chunk_index, category, tags, text_content, embedding)
		 VALUES(?, ?, ?, ?, ?, ?) RETURNING id`, s.cfg.Table))
	if err != nil {
		return nil, fmt.Errorf("%w: prepare insert: %v", ErrIngest, err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(chunks))
	for i, chunk := range chunks {
		blob, err := vector.EncodeEmbedding(vecs[i])
		if err != nil {
			return nil, fmt.Errorf("%w: encode embedding for chunk %d: %v", ErrIngest, i, err)
		}
		var id int64
		if err := stmt.QueryRowContext(dbCtx, documentName, i, nullable(category), tagsJSON, chunk, blob).Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: insert chunk %d of %q: %v", ErrIngest, i, documentName, err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit %q: %v", ErrIngest, documentName, err)
	}

	if err := s.rebuildIndex(ctx); err != nil {
		s.mu.Lock()
		s.indexReady = false
		s.mu.Unlock()
		s.log.WithError(err).Warn("similarity index refresh failed; queries fall back to full scan")
	}
	s.log.WithFields(logrus.Fields{"document": documentName, "chunks": len(ids)}).Debug("document ingested")
	return ids, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
