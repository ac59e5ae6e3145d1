package model

import "github.com/m-mizutani/goerr/v2"

// Error kinds shared by providers, stores and the engine. Callers test them
// with errors.Is.
var (
	// ErrInvalidInput covers empty text, malformed owners and vectors of the
	// wrong dimension.
	ErrInvalidInput = goerr.New("invalid input")

	// ErrProviderUnavailable means the embedding provider could not produce a
	// vector (network, timeout, non-success response).
	ErrProviderUnavailable = goerr.New("embedding provider unavailable")

	// ErrStoreUnavailable means the vector store backend could not be reached.
	ErrStoreUnavailable = goerr.New("vector store unavailable")

	// ErrCorrupted means a persisted partition failed its consistency checks.
	ErrCorrupted = goerr.New("vector store partition corrupted")
)

// Context keys for error values
const (
	OwnerKey     = "owner"
	MemoryIDKey  = "memory_id"
	DimensionKey = "dimension"
	ExpectedKey  = "expected"
	PathKey      = "path"
)
