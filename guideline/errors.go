package guideline

import "errors"

// Error kinds returned by the store. Every failure wraps one of these
// sentinels plus its underlying cause, so callers can match with errors.Is
// and degrade gracefully. The store itself never retries; retry policy
// belongs to the caller.
var (
	// ErrConfiguration marks missing or invalid construction-time
	// configuration; surfaced immediately, never lazily on first use.
	ErrConfiguration = errors.New("guideline: invalid configuration")

	// ErrSchema marks a failed table bootstrap. A failed index bootstrap is
	// reported through SchemaStatus instead and does not block operation.
	ErrSchema = errors.New("guideline: schema bootstrap failed")

	// ErrEmbedding marks an embedding-provider failure or a wrong-dimension
	// vector; nothing is persisted when ingest fails this way.
	ErrEmbedding = errors.New("guideline: embedding failed")

	// ErrIngest marks a storage write failure; the whole document transaction
	// is rolled back, leaving no partial chunks behind.
	ErrIngest = errors.New("guideline: ingest failed")

	// ErrQuery marks a storage read failure. An empty result set without an
	// error means the query legitimately matched nothing.
	ErrQuery = errors.New("guideline: query failed")

	// ErrInvalidArgument marks malformed caller input: blank text, negative
	// top-k, or chunking parameters that would stall the window.
	ErrInvalidArgument = errors.New("guideline: invalid argument")
)
