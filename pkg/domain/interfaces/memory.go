package interfaces

import (
	"context"

	"github.com/secmon-lab/zenmemory/pkg/domain/model"
)

// MemoryStore persists memories per owner and answers nearest-neighbour
// queries. Implementations never mix records of different owners.
type MemoryStore interface {
	// Upsert appends the memory to its owner's partition. The embedding is
	// normalized before indexing; a wrong dimension is rejected.
	Upsert(ctx context.Context, mem *model.Memory) error

	// Search returns up to limit memories of owner ordered by descending
	// cosine similarity to query. An owner without memories yields an empty
	// slice and no error.
	Search(ctx context.Context, owner model.Owner, query []float32, limit int) ([]*model.Memory, error)

	// Close releases backend resources
	Close() error
}
