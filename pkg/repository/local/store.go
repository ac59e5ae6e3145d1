package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/interfaces"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

// Store is a durable flat index with one directory per owner under a base
// directory. Partitions are read from disk the first time their owner is
// accessed and cached for the lifetime of the store once they hold records.
type Store struct {
	baseDir   string
	dimension int

	mu         sync.Mutex // guards partitions only, never held during I/O
	partitions map[model.Owner]*partition
	loads      singleflight.Group
}

var _ interfaces.MemoryStore = &Store{}

type Option func(*Store)

// WithDimension overrides the expected embedding dimension
func WithDimension(dim int) Option {
	return func(s *Store) {
		s.dimension = dim
	}
}

// New creates a store rooted at baseDir. No file is touched until the first
// write.
func New(baseDir string, opts ...Option) (*Store, error) {
	if baseDir == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "local store directory is empty")
	}

	s := &Store{
		baseDir:    baseDir,
		dimension:  model.EmbeddingDimension,
		partitions: make(map[model.Owner]*partition),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BaseDir returns the directory holding the partitions
func (s *Store) BaseDir() string {
	return s.baseDir
}

func (s *Store) Upsert(ctx context.Context, mem *model.Memory) error {
	if err := mem.Validate(s.dimension); err != nil {
		return err
	}
	normalized, err := model.Normalize(mem.Embedding)
	if err != nil {
		return goerr.Wrap(err, "failed to normalize embedding", goerr.V(model.MemoryIDKey, mem.ID))
	}

	p, err := s.partition(ctx, mem.Owner, true)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return goerr.Wrap(model.ErrStoreUnavailable, "context done before write", goerr.V("cause", err.Error()))
	}
	if err := p.append(mem, normalized); err != nil {
		return goerr.Wrap(err, "failed to append memory",
			goerr.V(model.MemoryIDKey, mem.ID),
			goerr.V("partition", filepath.Base(p.dir)),
		)
	}

	logging.From(ctx).Debug("memory flushed to local partition",
		"partition", filepath.Base(p.dir),
		"count", p.count(),
	)
	return nil
}

func (s *Store) Search(ctx context.Context, owner model.Owner, query []float32, limit int) ([]*model.Memory, error) {
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

	p, err := s.partition(ctx, owner, false)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.search(q, limit), nil
}

func (s *Store) Close() error {
	return nil
}

// partition returns the cached handle for owner, loading it from disk on
// first access. Concurrent first accesses share a single load. A failed load
// is not cached, so a corrupted partition keeps failing loudly. An empty
// partition is cached only when forWrite is set, so searches for unknown
// owners leave no entry behind.
func (s *Store) partition(ctx context.Context, owner model.Owner, forWrite bool) (*partition, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	p, ok := s.partitions[owner]
	s.mu.Unlock()
	if ok {
		return p, nil
	}

	v, err, _ := s.loads.Do(string(owner), func() (any, error) {
		dir := filepath.Join(s.baseDir, PartitionName(owner))
		p, err := loadPartition(dir, owner, s.dimension)
		if err != nil {
			return nil, err
		}

		logging.From(ctx).Debug("local partition loaded",
			"partition", filepath.Base(dir),
			"count", p.count(),
		)
		return p, nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load partition", goerr.V("partition", PartitionName(owner)))
	}
	p = v.(*partition)

	// Only a cached handle is ever written to, so at most one exists per owner.
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.partitions[owner]; ok {
		return cached, nil
	}
	if forWrite || p.count() > 0 {
		s.partitions[owner] = p
	}
	return p, nil
}

// PartitionReport is the outcome of checking one partition directory
type PartitionReport struct {
	Name  string
	Owner model.Owner
	Count int
	Err   error
}

// Verify loads every partition directory under the base directory and
// reports its consistency. It does not populate the partition cache.
func (s *Store) Verify(ctx context.Context) ([]PartitionReport, error) {
	entries, err := os.ReadDir(s.baseDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []PartitionReport{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "failed to list local store directory",
			goerr.V(model.PathKey, s.baseDir), goerr.V("cause", err.Error()))
	}

	reports := make([]PartitionReport, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "verification interrupted")
		}

		report := PartitionReport{Name: entry.Name()}
		p, err := loadPartition(filepath.Join(s.baseDir, entry.Name()), "", s.dimension)
		switch {
		case err != nil:
			report.Err = err
		case p.count() > 0 && PartitionName(p.owner) != entry.Name():
			report.Owner = p.owner
			report.Count = p.count()
			report.Err = goerr.Wrap(model.ErrCorrupted, "partition directory does not match its owner",
				goerr.V(model.PathKey, entry.Name()))
		default:
			report.Owner = p.owner
			report.Count = p.count()
		}
		reports = append(reports, report)
	}
	return reports, nil
}
