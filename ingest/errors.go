package ingest

import "errors"

var (
	// ErrStateManagerRequired is returned when a state manager is not provided.
	ErrStateManagerRequired = errors.New("state manager required")

	// ErrStoreOpenerRequired is returned when a store opener is not provided.
	ErrStoreOpenerRequired = errors.New("store opener required")

	// ErrProjectNotFound is returned when a project has no log directory.
	ErrProjectNotFound = errors.New("project log directory not found")

	// ErrInvalidMaxAttempts is returned when retry attempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")
)
