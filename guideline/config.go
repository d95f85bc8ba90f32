package guideline

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/viant/guideline-vec/chunker"
)

// Defaults applied by Config.applyDefaults.
const (
	DefaultTable        = "product_guidelines"
	DefaultEmbeddingDim = 768
	DefaultEmbedTimeout = 30 * time.Second
	DefaultQueryTimeout = 15 * time.Second
)

// Environment variables recognized by ConfigFromEnv.
const (
	EnvPath         = "GUIDELINE_DB_PATH"
	EnvTable        = "GUIDELINE_TABLE"
	EnvEmbeddingDim = "GUIDELINE_EMBEDDING_DIM"
	EnvChunkSize    = "GUIDELINE_CHUNK_SIZE"
	EnvChunkOverlap = "GUIDELINE_CHUNK_OVERLAP"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config carries the store's construction-time settings. The zero value plus
// applyDefaults yields a working configuration; Validate fails fast with
// ErrConfiguration instead of letting a bad setting surface on first use.
//
// Path is the SQLite database path or DSN (":memory:" supported). The
// connection credentials of a server-hosted store (user, password, host,
// port, database, cluster, instance) collapse to this single field for an
// embedded engine.
type Config struct {
	Path         string
	Table        string
	EmbeddingDim int
	ChunkSize    int
	ChunkOverlap int

	// EmbedTimeout bounds each embedding-provider call; QueryTimeout bounds
	// each storage round-trip. A timed-out call fails with its error kind
	// rather than returning partial results.
	EmbedTimeout time.Duration
	QueryTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.EmbeddingDim == 0 {
		c.EmbeddingDim = DefaultEmbeddingDim
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = chunker.DefaultSize
	}
	if c.ChunkOverlap == 0 && c.ChunkSize > chunker.DefaultOverlap {
		c.ChunkOverlap = chunker.DefaultOverlap
	}
	if c.EmbedTimeout == 0 {
		c.EmbedTimeout = DefaultEmbedTimeout
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = DefaultQueryTimeout
	}
}

// Validate checks everything except Path, which only Open requires.
func (c Config) Validate() error {
	if !tableNamePattern.MatchString(c.Table) {
		return fmt.Errorf("%w: table name %q is not a valid identifier", ErrConfiguration, c.Table)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("%w: embedding dimension must be positive, got %d", ErrConfiguration, c.EmbeddingDim)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", ErrConfiguration, c.ChunkOverlap, c.ChunkSize)
	}
	if c.EmbedTimeout < 0 || c.QueryTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrConfiguration)
	}
	return nil
}

// fileConfig is the YAML shape of Config; timeouts are duration strings.
type fileConfig struct {
	Path         string `yaml:"path"`
	Table        string `yaml:"table"`
	EmbeddingDim int    `yaml:"embeddingDim"`
	ChunkSize    int    `yaml:"chunkSize"`
	ChunkOverlap int    `yaml:"chunkOverlap"`
	EmbedTimeout string `yaml:"embedTimeout"`
	QueryTimeout string `yaml:"queryTimeout"`
}

// LoadConfig reads a YAML configuration file. Environment references like
// ${GUIDELINE_DB_PATH} are expanded before decoding; unknown fields are
// rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	var file fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", ErrConfiguration, path, err)
	}

	cfg := Config{
		Path:         file.Path,
		Table:        file.Table,
		EmbeddingDim: file.EmbeddingDim,
		ChunkSize:    file.ChunkSize,
		ChunkOverlap: file.ChunkOverlap,
	}
	if cfg.EmbedTimeout, err = parseTimeout(file.EmbedTimeout); err != nil {
		return Config{}, fmt.Errorf("%w: embedTimeout: %v", ErrConfiguration, err)
	}
	if cfg.QueryTimeout, err = parseTimeout(file.QueryTimeout); err != nil {
		return Config{}, fmt.Errorf("%w: queryTimeout: %v", ErrConfiguration, err)
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

// ConfigFromEnv builds a Config from the GUIDELINE_* environment variables,
// falling back to defaults for anything unset.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Path:  os.Getenv(EnvPath),
		Table: os.Getenv(EnvTable),
	}
	var err error
	if cfg.EmbeddingDim, err = intFromEnv(EnvEmbeddingDim); err != nil {
		return Config{}, err
	}
	if cfg.ChunkSize, err = intFromEnv(EnvChunkSize); err != nil {
		return Config{}, err
	}
	if cfg.ChunkOverlap, err = intFromEnv(EnvChunkOverlap); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func parseTimeout(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}

func intFromEnv(key string) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrConfiguration, key, value)
	}
	return n, nil
}
