package query

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"recall/core"
	"recall/state"
	"recall/vectorstore"
)

// StoreOpener returns a vector store handle for a project's collection.
type StoreOpener func(project, collection string) (vectorstore.Store, error)

// Coordinator runs searches across project collections.
type Coordinator struct {
	states *state.Manager
	open   StoreOpener
	logger *slog.Logger

	mu     sync.Mutex
	stores map[string]vectorstore.Store
}

// NewCoordinator creates a query coordinator.
func NewCoordinator(states *state.Manager, open StoreOpener, logger *slog.Logger) (*Coordinator, error) {
	if states == nil {
		return nil, ErrStateManagerRequired
	}
	if open == nil {
		return nil, ErrStoreOpenerRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		states: states,
		open:   open,
		logger: logger.With("component", "query-coordinator"),
		stores: make(map[string]vectorstore.Store),
	}, nil
}

// storeFor returns the cached store handle for a project, opening it on
// first use.
func (c *Coordinator) storeFor(project string) (vectorstore.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.stores[project]; ok {
		return s, nil
	}
	st, err := c.states.Load(project)
	if err != nil {
		return nil, err
	}
	s, err := c.open(project, st.CollectionName)
	if err != nil {
		return nil, err
	}
	c.stores[project] = s
	return s, nil
}

// Search runs query against the given projects and returns the merged
// hits, ranked by descending score and truncated to limit. An empty
// projects list searches every tracked project. Projects that were
// never indexed contribute no hits.
func (c *Coordinator) Search(ctx context.Context, query string, projects []string, limit int, scoreThreshold float32) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = vectorstore.DefaultSearchLimit
	}

	if len(projects) == 0 {
		tracked, err := c.states.ListProjects()
		if err != nil {
			return nil, err
		}
		projects = tracked
	}

	merged := []*core.SearchResult{}
	for _, project := range projects {
		store, err := c.storeFor(project)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", project, err)
		}
		hits, err := store.Search(ctx, query, limit, scoreThreshold)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", project, err)
		}
		for _, hit := range hits {
			hit.Project = project
			merged = append(merged, hit)
		}
		c.logger.Debug("project searched", "project", project, "hits", len(hits))
	}

	slices.SortStableFunc(merged, func(a, b *core.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// Close releases all cached store handles.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for project, s := range c.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("project %s: %w", project, err)
		}
	}
	c.stores = make(map[string]vectorstore.Store)
	return firstErr
}
