package local

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
)

const (
	indexFileName   = "index.flat"
	sidecarFileName = "meta.json"
)

// record is one sidecar entry; its position matches the vector position in
// the index file
type record struct {
	ID        model.MemoryID `json:"id"`
	Text      string         `json:"text"`
	Owner     model.Owner    `json:"owner"`
	CreatedAt time.Time      `json:"created_at"`
}

// partition holds every memory of a single owner. mu admits one writer or
// many readers and is never held together with another partition's lock.
type partition struct {
	mu        sync.RWMutex
	owner     model.Owner
	dir       string
	dimension int
	records   []record
	vectors   [][]float32
	ids       map[model.MemoryID]struct{}
}

func newPartition(dir string, owner model.Owner, dim int) *partition {
	return &partition{
		owner:     owner,
		dir:       dir,
		dimension: dim,
		ids:       make(map[model.MemoryID]struct{}),
	}
}

// loadPartition reads the partition stored in dir. A missing directory is an
// empty partition. An empty owner accepts whichever owner the sidecar names.
func loadPartition(dir string, owner model.Owner, dim int) (*partition, error) {
	indexData, indexErr := os.ReadFile(filepath.Join(dir, indexFileName))
	sidecarData, sidecarErr := os.ReadFile(filepath.Join(dir, sidecarFileName))

	indexMissing := errors.Is(indexErr, fs.ErrNotExist)
	sidecarMissing := errors.Is(sidecarErr, fs.ErrNotExist)

	switch {
	case indexMissing && sidecarMissing:
		return newPartition(dir, owner, dim), nil
	case indexMissing || sidecarMissing:
		return nil, goerr.Wrap(model.ErrCorrupted, "partition is missing one of its files",
			goerr.V(model.PathKey, dir),
			goerr.V("index_missing", indexMissing),
			goerr.V("sidecar_missing", sidecarMissing),
		)
	case indexErr != nil:
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "failed to read index file",
			goerr.V(model.PathKey, dir), goerr.V("cause", indexErr.Error()))
	case sidecarErr != nil:
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "failed to read sidecar file",
			goerr.V(model.PathKey, dir), goerr.V("cause", sidecarErr.Error()))
	}

	vectors, err := decodeIndex(indexData, dim)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode index", goerr.V(model.PathKey, dir))
	}

	var records []record
	if err := json.Unmarshal(sidecarData, &records); err != nil {
		return nil, goerr.Wrap(model.ErrCorrupted, "sidecar is not valid JSON",
			goerr.V(model.PathKey, dir), goerr.V("cause", err.Error()))
	}
	if len(records) != len(vectors) {
		return nil, goerr.Wrap(model.ErrCorrupted, "sidecar and index disagree on record count",
			goerr.V(model.PathKey, dir),
			goerr.V("sidecar_count", len(records)),
			goerr.V("index_count", len(vectors)),
		)
	}

	if owner == "" && len(records) > 0 {
		owner = records[0].Owner
	}
	p := newPartition(dir, owner, dim)
	for i, rec := range records {
		if rec.Owner != owner {
			return nil, goerr.Wrap(model.ErrCorrupted, "sidecar record belongs to another owner",
				goerr.V(model.PathKey, dir),
				goerr.V("position", i),
			)
		}
		if _, dup := p.ids[rec.ID]; dup || rec.ID == "" {
			return nil, goerr.Wrap(model.ErrCorrupted, "sidecar has missing or duplicate memory ID",
				goerr.V(model.PathKey, dir),
				goerr.V("position", i),
			)
		}
		p.ids[rec.ID] = struct{}{}
	}
	p.records = records
	p.vectors = vectors
	return p, nil
}

// append persists mem and only then makes it visible in memory, so a failed
// flush leaves the partition as it was. Caller holds p.mu for writing.
func (p *partition) append(mem *model.Memory, normalized []float32) error {
	if _, dup := p.ids[mem.ID]; dup {
		return goerr.Wrap(model.ErrInvalidInput, "memory ID already exists", goerr.V(model.MemoryIDKey, mem.ID))
	}

	records := append(slices.Clip(p.records), record{
		ID:        mem.ID,
		Text:      mem.Text,
		Owner:     mem.Owner,
		CreatedAt: mem.CreatedAt,
	})
	vectors := append(slices.Clip(p.vectors), normalized)

	if err := p.flush(records, vectors); err != nil {
		return err
	}

	p.records = records
	p.vectors = vectors
	p.ids[mem.ID] = struct{}{}
	return nil
}

func (p *partition) flush(records []record, vectors [][]float32) error {
	indexData, err := encodeIndex(p.dimension, vectors)
	if err != nil {
		return err
	}
	sidecarData, err := json.Marshal(records)
	if err != nil {
		return goerr.Wrap(err, "failed to encode sidecar")
	}

	if err := os.MkdirAll(p.dir, 0o700); err != nil {
		return goerr.Wrap(model.ErrStoreUnavailable, "failed to create partition directory",
			goerr.V(model.PathKey, p.dir), goerr.V("cause", err.Error()))
	}
	if err := writeFileSync(p.dir, indexFileName, indexData); err != nil {
		return err
	}
	if err := writeFileSync(p.dir, sidecarFileName, sidecarData); err != nil {
		return err
	}
	return syncDir(p.dir)
}

// search scores every vector against the unit query. Caller holds p.mu for
// reading.
func (p *partition) search(query []float32, limit int) []*model.Memory {
	order := make([]int, len(p.vectors))
	scores := make([]float64, len(p.vectors))
	for i, vec := range p.vectors {
		order[i] = i
		scores[i] = model.InnerProduct(query, vec)
	}

	// older records win ties so repeated reads are identical
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if limit > len(order) {
		limit = len(order)
	}
	results := make([]*model.Memory, limit)
	for i, pos := range order[:limit] {
		rec := p.records[pos]
		results[i] = &model.Memory{
			ID:        rec.ID,
			Owner:     rec.Owner,
			Text:      rec.Text,
			Embedding: slices.Clone(p.vectors[pos]),
			Score:     scores[pos],
			CreatedAt: rec.CreatedAt,
		}
	}
	return results
}

func (p *partition) count() int {
	return len(p.records)
}

// writeFileSync replaces dir/name through a synced temp file and a rename
func writeFileSync(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return goerr.Wrap(model.ErrStoreUnavailable, "failed to create temp file",
			goerr.V(model.PathKey, dir), goerr.V("cause", err.Error()))
	}
	tmpName := tmp.Name()

	fail := func(msg string, cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return goerr.Wrap(model.ErrStoreUnavailable, msg,
			goerr.V(model.PathKey, filepath.Join(dir, name)), goerr.V("cause", cause.Error()))
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("failed to write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("failed to sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(model.ErrStoreUnavailable, "failed to close temp file",
			goerr.V(model.PathKey, tmpName), goerr.V("cause", err.Error()))
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(model.ErrStoreUnavailable, "failed to replace file",
			goerr.V(model.PathKey, filepath.Join(dir, name)), goerr.V("cause", err.Error()))
	}
	return nil
}

// syncDir makes the renames in dir durable
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return goerr.Wrap(model.ErrStoreUnavailable, "failed to open partition directory",
			goerr.V(model.PathKey, dir), goerr.V("cause", err.Error()))
	}
	defer d.Close()

	if err := d.Sync(); err != nil {
		return goerr.Wrap(model.ErrStoreUnavailable, "failed to sync partition directory",
			goerr.V(model.PathKey, dir), goerr.V("cause", err.Error()))
	}
	return nil
}
