package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/interfaces"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
)

// Store keeps memories in process memory. Contents are lost when the process
// exits; it backs development runs and tests.
type Store struct {
	mu        sync.RWMutex
	dimension int
	entries   map[model.Owner][]*model.Memory
}

var _ interfaces.MemoryStore = &Store{}

type Option func(*Store)

// WithDimension overrides the expected embedding dimension
func WithDimension(dim int) Option {
	return func(s *Store) {
		s.dimension = dim
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		dimension: model.EmbeddingDimension,
		entries:   make(map[model.Owner][]*model.Memory),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Upsert(ctx context.Context, mem *model.Memory) error {
	if err := mem.Validate(s.dimension); err != nil {
		return err
	}
	normalized, err := model.Normalize(mem.Embedding)
	if err != nil {
		return goerr.Wrap(err, "failed to normalize embedding", goerr.V(model.MemoryIDKey, mem.ID))
	}

	stored := mem.Copy()
	stored.Embedding = normalized
	stored.Score = 0

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[mem.Owner] = append(s.entries[mem.Owner], stored)
	return nil
}

func (s *Store) Search(ctx context.Context, owner model.Owner, query []float32, limit int) ([]*model.Memory, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if err := model.CheckDimension(query, s.dimension); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*model.Memory{}, nil
	}
	q, err := model.Normalize(query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to normalize query")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.entries[owner]
	candidates := make([]*model.Memory, len(bucket))
	for i, m := range bucket {
		c := m.Copy()
		c.Score = model.InnerProduct(q, m.Embedding)
		candidates[i] = c
	}

	// insertion order breaks ties
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	return candidates[:limit], nil
}

func (s *Store) Close() error {
	return nil
}
