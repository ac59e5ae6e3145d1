package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/interfaces"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/domain/model/config"
	"github.com/secmon-lab/zenmemory/pkg/utils/logging"
)

// MemoryUseCase remembers utterances and recalls the most relevant ones. It
// only talks to the Embedder and MemoryStore interfaces and behaves the same
// with any backend behind them.
type MemoryUseCase struct {
	embedder interfaces.Embedder
	store    interfaces.MemoryStore
	config   config.EngineConfig
}

func NewMemoryUseCase(embedder interfaces.Embedder, store interfaces.MemoryStore, cfg config.EngineConfig) *MemoryUseCase {
	defaults := config.DefaultEngineConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaults.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = defaults.MaxLimit
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = defaults.EmbedTimeout
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaults.StoreTimeout
	}

	return &MemoryUseCase{
		embedder: embedder,
		store:    store,
		config:   cfg,
	}
}

// Remember embeds text and appends it to owner's memories
func (uc *MemoryUseCase) Remember(ctx context.Context, owner model.Owner, text string) (model.MemoryID, error) {
	if err := owner.Validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", goerr.Wrap(model.ErrInvalidInput, "text is empty")
	}

	vec, err := uc.embed(ctx, text)
	if err != nil {
		return "", err
	}

	mem := &model.Memory{
		ID:        model.NewMemoryID(),
		Owner:     owner,
		Text:      text,
		Embedding: vec,
		CreatedAt: time.Now().UTC(),
	}

	storeCtx, cancel := context.WithTimeout(ctx, uc.config.StoreTimeout)
	defer cancel()

	if err := uc.store.Upsert(storeCtx, mem); err != nil {
		return "", goerr.Wrap(err, "failed to store memory", goerr.V(model.MemoryIDKey, mem.ID))
	}

	logging.From(ctx).Info("memory remembered",
		"owner", string(owner),
		"memory_id", string(mem.ID),
	)
	return mem.ID, nil
}

// Recall returns the texts of owner's memories closest to query, best match
// first. A limit of 0 means the configured default.
func (uc *MemoryUseCase) Recall(ctx context.Context, owner model.Owner, query string, limit int) ([]string, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "query is empty")
	}

	switch {
	case limit < 0:
		return nil, goerr.Wrap(model.ErrInvalidInput, "limit is negative", goerr.V("limit", limit))
	case limit == 0:
		limit = uc.config.DefaultLimit
	case limit > uc.config.MaxLimit:
		limit = uc.config.MaxLimit
	}

	vec, err := uc.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, uc.config.StoreTimeout)
	defer cancel()

	memories, err := uc.store.Search(storeCtx, owner, vec, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search memories", goerr.V("limit", limit))
	}

	texts := make([]string, len(memories))
	for i, m := range memories {
		texts[i] = m.Text
	}

	logging.From(ctx).Debug("memories recalled",
		"owner", string(owner),
		"limit", limit,
		"count", len(texts),
	)
	return texts, nil
}

func (uc *MemoryUseCase) embed(ctx context.Context, text string) ([]float32, error) {
	embedCtx, cancel := context.WithTimeout(ctx, uc.config.EmbedTimeout)
	defer cancel()

	vec, err := uc.embedder.Embed(embedCtx, text)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed text")
	}
	if len(vec) != uc.embedder.Dimension() {
		return nil, goerr.Wrap(model.ErrProviderUnavailable, "embedder returned vector of unexpected dimension",
			goerr.V(model.DimensionKey, len(vec)),
			goerr.V(model.ExpectedKey, uc.embedder.Dimension()),
		)
	}
	return vec, nil
}
