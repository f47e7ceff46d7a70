package ai

import "sync"

var (
	sharedMu sync.Mutex
	shared   Embedder
)

// Shared returns the process-wide embedder, constructing it with factory
// on first use. Subsequent calls return the same instance and ignore the
// factory, amortizing the model-load cost across all projects.
func Shared(factory func() (Embedder, error)) (Embedder, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		embedder, err := factory()
		if err != nil {
			return nil, err
		}
		shared = embedder
	}
	return shared, nil
}

// ResetShared clears the process-wide embedder so the next Shared call
// constructs a fresh instance. Intended for tests.
func ResetShared() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	shared = nil
}
