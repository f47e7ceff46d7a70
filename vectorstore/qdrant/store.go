package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"recall/ai"
	"recall/core"
	"recall/vectorstore"
)

// Store is a vectorstore.Store backed by a Qdrant server over its REST
// API. It assumes cosine distance and creates the collection if missing.
type Store struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	embedder   ai.Embedder
	client     *http.Client
	logger     *slog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

// Config holds connection details for a Qdrant server.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

// newStore is an internal constructor that returns the concrete type.
func newStore(cfg Config, embedder ai.Embedder) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		embedder:   embedder,
		client:     &http.Client{Timeout: timeout},
		logger:     slog.Default().With("component", "qdrant-store", "collection", cfg.Collection),
	}
}

// NewStore creates a Qdrant-backed store for one collection.
//
// Returns vectorstore.Store interface to enforce abstraction.
func NewStore(cfg Config, embedder ai.Embedder) vectorstore.Store {
	return newStore(cfg, embedder)
}

// EnsureCollection creates the collection if it does not exist.
// Safe to call repeatedly and concurrently; an already-existing
// collection is not an error.
func (s *Store) EnsureCollection(ctx context.Context) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body := createCollectionRequest{
		Vectors: vectorsConfig{Size: s.dimension, Distance: "Cosine"},
	}
	status, err := s.doJSON(ctx, http.MethodPut, s.collectionURL(), body, nil)
	if err != nil {
		return err
	}
	// 409 means another caller created it concurrently.
	if status >= 300 && status != http.StatusConflict {
		return fmt.Errorf("qdrant create collection %s: status %d", s.collection, status)
	}
	return nil
}

// Index embeds the messages in one batch and upserts the resulting
// points, chunked by vectorstore.WriteBatchSize. Points are keyed by
// message identifier, so re-ingestion overwrites.
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

	points := make([]point, len(messages))
	for i, msg := range messages {
		points[i] = point{
			ID:     pointID(msg),
			Vector: vectors[i],
			Payload: pointPayload{
				FilePath:   msg.FilePath,
				LineNumber: msg.LineNumber,
				UUID:       msg.UUID,
				Role:       msg.Role,
				Snippet:    vectorstore.Snippet(msg.Content),
				Timestamp:  msg.Timestamp,
				SessionID:  msg.SessionID,
			},
		}
	}

	for start := 0; start < len(points); start += vectorstore.WriteBatchSize {
		end := start + vectorstore.WriteBatchSize
		if end > len(points) {
			end = len(points)
		}
		batch := upsertRequest{Points: points[start:end]}
		status, err := s.doJSON(ctx, http.MethodPut, s.collectionURL()+"/points?wait=true", batch, nil)
		if err != nil {
			return 0, err
		}
		if status >= 300 {
			return 0, fmt.Errorf("qdrant upsert to %s: status %d", s.collection, status)
		}
		s.logger.Debug("upserted point batch", "count", end-start)
	}

	return len(points), nil
}

// Search embeds the query and runs a nearest-neighbor lookup. A missing
// collection yields an empty result, not an error. Qdrant reports
// cosine hits as similarities directly, higher is more relevant; hits
// below scoreThreshold are dropped server-side.
func (s *Store) Search(ctx context.Context, query string, limit int, scoreThreshold float32) ([]*core.SearchResult, error) {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []*core.SearchResult{}, nil
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	req := searchRequest{
		Vector:         vector,
		Limit:          limit,
		WithPayload:    true,
		ScoreThreshold: scoreThreshold,
	}
	var resp searchResponse
	status, err := s.doJSON(ctx, http.MethodPost, s.collectionURL()+"/points/search", req, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant search in %s: status %d", s.collection, status)
	}

	results := make([]*core.SearchResult, 0, len(resp.Result))
	for _, hit := range resp.Result {
		results = append(results, &core.SearchResult{
			UUID:       hit.Payload.UUID,
			FilePath:   hit.Payload.FilePath,
			LineNumber: hit.Payload.LineNumber,
			Role:       hit.Payload.Role,
			Snippet:    hit.Payload.Snippet,
			Score:      hit.Score,
			Timestamp:  hit.Payload.Timestamp,
			SessionID:  hit.Payload.SessionID,
		})
	}
	return results, nil
}

// Stats returns the collection's point count and status. A missing
// collection reports vectorstore.StatusNotFound, not an error.
func (s *Store) Stats(ctx context.Context) (*vectorstore.Stats, error) {
	var resp collectionInfoResponse
	status, err := s.doJSON(ctx, http.MethodGet, s.collectionURL(), nil, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return &vectorstore.Stats{
			Collection: s.collection,
			Status:     vectorstore.StatusNotFound,
		}, nil
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant collection info %s: status %d", s.collection, status)
	}
	return &vectorstore.Stats{
		Collection:  s.collection,
		PointsCount: resp.Result.PointsCount,
		Status:      resp.Result.Status,
	}, nil
}

// Drop removes the collection entirely.
func (s *Store) Drop(ctx context.Context) error {
	status, err := s.doJSON(ctx, http.MethodDelete, s.collectionURL(), nil, nil)
	if err != nil {
		return err
	}
	if status >= 300 && status != http.StatusNotFound {
		return fmt.Errorf("qdrant delete collection %s: status %d", s.collection, status)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no persistent connections
// worth tearing down explicitly.
func (s *Store) Close() error {
	return nil
}

func (s *Store) collectionExists(ctx context.Context) (bool, error) {
	status, err := s.doJSON(ctx, http.MethodGet, s.collectionURL(), nil, nil)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if status >= 300 {
		return false, fmt.Errorf("qdrant collection info %s: status %d", s.collection, status)
	}
	return true, nil
}

func (s *Store) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

// doJSON performs one request with an optional JSON body and decodes
// the response into out when provided. Transport-level failures are
// wrapped in vectorstore.ErrBackendUnreachable so callers can
// distinguish them from empty results.
func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("qdrant request failed", "method", method, "url", url, "err", err)
		return 0, fmt.Errorf("%w: %v", vectorstore.ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

// pointID chooses the wire identifier for a message. Qdrant accepts
// UUID strings or unsigned integers; records with a well-formed uuid
// keep it, everything else falls back to the content-derived 64-bit ID.
func pointID(msg *core.Message) any {
	if _, err := uuid.Parse(msg.UUID); err == nil {
		return msg.UUID
	}
	return uint64(msg.PointID())
}
