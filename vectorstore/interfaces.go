package vectorstore

import (
	"context"

	"recall/core"
)

const (
	// DefaultScoreThreshold is the minimum similarity a hit needs to be
	// returned from Search. Candidates strictly below are dropped.
	DefaultScoreThreshold = 0.3

	// DefaultSearchLimit is the number of hits returned when the caller
	// does not ask for a specific limit.
	DefaultSearchLimit = 5

	// WriteBatchSize is the number of points written per physical
	// upsert. A larger Index call is split into chunks of this size.
	WriteBatchSize = 100

	// StatusNotFound is the Stats status reported for a collection that
	// has not been created yet. It is a valid state, not an error.
	StatusNotFound = "not_found"
)

// Stats describes a collection's current shape.
type Stats struct {
	Collection  string
	PointsCount int
	Status      string
}

// Store persists embedded messages and answers nearest-neighbor queries
// against them. Implementations must be safe for concurrent reads.
type Store interface {
	// EnsureCollection creates the backing collection sized to the
	// embedding dimensionality, using cosine similarity. It is
	// idempotent: calling it repeatedly, or concurrently with itself,
	// is safe and never fails on an existing collection.
	EnsureCollection(ctx context.Context) error

	// Index embeds the messages' content in one batch, builds one point
	// per message and persists them, chunked by WriteBatchSize. Returns
	// the number of messages indexed; an empty input is a no-op that
	// makes no backend call. Callers must not assume all-or-nothing
	// across chunk boundaries on failure.
	Index(ctx context.Context, messages []*core.Message) (int, error)

	// Search embeds the query once and returns up to limit hits ranked
	// by similarity descending, dropping hits with similarity strictly
	// below scoreThreshold. A collection that does not exist yet yields
	// an empty result, not an error.
	Search(ctx context.Context, query string, limit int, scoreThreshold float32) ([]*core.SearchResult, error)

	// Stats returns the point count and a coarse status string.
	// A missing collection reports StatusNotFound with a zero count.
	Stats(ctx context.Context) (*Stats, error)

	// Drop removes the collection entirely. After Drop, Stats reports
	// StatusNotFound and Search reports empty results.
	Drop(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
