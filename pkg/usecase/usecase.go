package usecase

import (
	"github.com/secmon-lab/zenmemory/pkg/domain/interfaces"
	"github.com/secmon-lab/zenmemory/pkg/domain/model/config"
)

type UseCases struct {
	engineConfig config.EngineConfig
	Memory       *MemoryUseCase
}

type Option func(*UseCases)

func WithEngineConfig(cfg config.EngineConfig) Option {
	return func(uc *UseCases) {
		uc.engineConfig = cfg
	}
}

func New(embedder interfaces.Embedder, store interfaces.MemoryStore, opts ...Option) *UseCases {
	uc := &UseCases{
		engineConfig: config.DefaultEngineConfig(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Memory = NewMemoryUseCase(embedder, store, uc.engineConfig)

	return uc
}
