package badger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"recall/ai"
	"recall/core"
	"recall/vectorstore"
)

// Store is a vectorstore.Store backed by an embedded BadgerDB database.
// One database can host multiple collections; each Store addresses a
// single collection. Points are keyed by identifier, so re-ingesting
// the same identifier overwrites the stored vector.
//
// Search is a brute-force cosine scan over all points in the
// collection, which is adequate for the per-project collection sizes
// this system handles.
type Store struct {
	backend    *Backend
	collection string
	dimension  int
	embedder   ai.Embedder
	logger     *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// newStore is an internal constructor that returns the concrete type.
func newStore(backend *Backend, collection string, dimension int, embedder ai.Embedder) *Store {
	return &Store{
		backend:    backend,
		collection: collection,
		dimension:  dimension,
		embedder:   embedder,
		logger:     slog.Default().With("component", "badger-store", "collection", collection),
	}
}

// NewStore creates a badger-backed store for one collection.
//
// Returns vectorstore.Store interface to enforce abstraction.
// The backend is shared; Close on the store does not close it.
func NewStore(backend *Backend, collection string, dimension int, embedder ai.Embedder) vectorstore.Store {
	return newStore(backend, collection, dimension, embedder)
}

// ready rejects operations against a closed backend.
func (s *Store) ready() error {
	if s.backend.IsClosed() {
		return vectorstore.ErrStoreClosed
	}
	return nil
}

// EnsureCollection marks the collection as existing. Safe to call
// repeatedly; the check-and-set runs inside one write transaction.
func (s *Store) EnsureCollection(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCollectionKey(s.collection)
		_, err := tx.Get(key)
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		if err := tx.Set(key, []byte(fmt.Sprintf("%d", s.dimension))); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Index embeds the messages in one batch and writes the resulting
// points, chunked by vectorstore.WriteBatchSize with one transaction
// per chunk.
func (s *Store) Index(ctx context.Context, messages []*core.Message) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	if err := s.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	texts := make([]string, len(messages))
	for i, msg := range messages {
		texts[i] = msg.Content
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(messages) {
		return 0, fmt.Errorf("%w: %d messages, %d vectors",
			vectorstore.ErrEmbeddingCountMismatch, len(messages), len(vectors))
	}

	for start := 0; start < len(messages); start += vectorstore.WriteBatchSize {
		end := start + vectorstore.WriteBatchSize
		if end > len(messages) {
			end = len(messages)
		}
		err := s.backend.WithTx(func(tx *badger.Txn) error {
			for i := start; i < end; i++ {
				msg := messages[i]
				p := storedPoint{
					ID:         uint64(msg.PointID()),
					UUID:       msg.UUID,
					Vector:     vectors[i],
					FilePath:   msg.FilePath,
					LineNumber: msg.LineNumber,
					Role:       msg.Role,
					Snippet:    vectorstore.Snippet(msg.Content),
					Timestamp:  msg.Timestamp,
					SessionID:  msg.SessionID,
				}
				key := makePointKey(s.collection, msg.PointID())
				if err := tx.Set(key, marshalStoredPoint(p)); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return 0, err
		}
		s.logger.Debug("wrote point batch", "count", end-start)
	}

	return len(messages), nil
}

// Search embeds the query and scans the collection for the most
// similar points. A collection that does not exist yet yields an empty
// result. Candidates with similarity strictly below scoreThreshold are
// dropped; the rest are ranked descending and capped at limit.
func (s *Store) Search(ctx context.Context, query string, limit int, scoreThreshold float32) ([]*core.SearchResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	exists, err := s.collectionExists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return []*core.SearchResult{}, nil
	}

	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	var results []*core.SearchResult
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = pointKeyPrefix(s.collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var p storedPoint
			err := iter.Item().Value(func(val []byte) error {
				var err error
				p, err = unmarshalStoredPoint(val)
				return err
			})
			if err != nil {
				return err
			}

			score := cosineSimilarity(queryVector, p.Vector)
			if score < scoreThreshold {
				continue
			}

			results = append(results, &core.SearchResult{
				UUID:       p.UUID,
				FilePath:   p.FilePath,
				LineNumber: p.LineNumber,
				Role:       p.Role,
				Snippet:    p.Snippet,
				Score:      score,
				Timestamp:  p.Timestamp,
				SessionID:  p.SessionID,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []*core.SearchResult{}
	}
	return results, nil
}

// Stats returns the collection's point count. A missing collection
// reports vectorstore.StatusNotFound, not an error.
func (s *Store) Stats(ctx context.Context) (*vectorstore.Stats, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	exists, err := s.collectionExists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return &vectorstore.Stats{
			Collection: s.collection,
			Status:     vectorstore.StatusNotFound,
		}, nil
	}

	count := 0
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = pointKeyPrefix(s.collection)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return &vectorstore.Stats{
		Collection:  s.collection,
		PointsCount: count,
		Status:      "ok",
	}, nil
}

// Drop removes the collection's points and metadata entirely.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.backend.DropPrefix(pointKeyPrefix(s.collection)); err != nil {
		return err
	}
	// The metadata key has no trailing separator, so a prefix drop
	// would also hit sibling collections whose names extend this one.
	// Delete the exact key instead.
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCollectionKey(s.collection)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Close is a no-op; the shared backend is closed by its owner.
func (s *Store) Close() error {
	return nil
}

func (s *Store) collectionExists() (bool, error) {
	exists := false
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeCollectionKey(s.collection))
		if err == nil {
			exists = true
			return nil
		}
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	}, false)
	return exists, err
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Zero-magnitude input yields 0.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
