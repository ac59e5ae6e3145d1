package model

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// EmbeddingDimension is the dimensionality of every stored and queried vector
const EmbeddingDimension = 384

// MemoryID is a UUID-based identifier for Memory
type MemoryID string

// NewMemoryID generates a new UUID v4 MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// Owner identifies the principal a memory belongs to, typically an account
// email. It is opaque to the engine and the stores.
type Owner string

// Validate rejects owners that are blank or carry control characters
func (o Owner) Validate() error {
	if strings.TrimSpace(string(o)) == "" {
		return goerr.Wrap(ErrInvalidInput, "owner is empty")
	}
	for _, r := range string(o) {
		if unicode.IsControl(r) {
			return goerr.Wrap(ErrInvalidInput, "owner contains control character",
				goerr.V(OwnerKey, string(o)))
		}
	}
	return nil
}

// Memory is a single remembered utterance of an owner
type Memory struct {
	ID        MemoryID
	Owner     Owner
	Text      string
	Embedding []float32 // EmbeddingDimension values, unit length once stored
	Score     float64   // cosine similarity, only set on search results
	CreatedAt time.Time
}

// Validate checks that the memory can be persisted by a store expecting
// vectors of the given dimension
func (m *Memory) Validate(dim int) error {
	if m.ID == "" {
		return goerr.Wrap(ErrInvalidInput, "memory ID is empty")
	}
	if err := m.Owner.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.Text) == "" {
		return goerr.Wrap(ErrInvalidInput, "memory text is empty", goerr.V(MemoryIDKey, m.ID))
	}
	if err := CheckDimension(m.Embedding, dim); err != nil {
		return goerr.Wrap(err, "invalid memory embedding", goerr.V(MemoryIDKey, m.ID))
	}
	return nil
}

// Copy returns a deep copy so callers never share the embedding slice
func (m *Memory) Copy() *Memory {
	copied := *m
	if m.Embedding != nil {
		copied.Embedding = make([]float32, len(m.Embedding))
		copy(copied.Embedding, m.Embedding)
	}
	return &copied
}
