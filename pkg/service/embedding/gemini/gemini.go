package gemini

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/zenmemory/pkg/domain/interfaces"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
)

// Embedder requests reduced-dimension embeddings from Gemini through gollem
type Embedder struct {
	client    gollem.LLMClient
	dimension int
}

var _ interfaces.Embedder = &Embedder{}

type Option func(*Embedder)

func WithDimension(dim int) Option {
	return func(e *Embedder) {
		e.dimension = dim
	}
}

func New(client gollem.LLMClient, opts ...Option) *Embedder {
	e := &Embedder{
		client:    client,
		dimension: model.EmbeddingDimension,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Embedder) Dimension() int {
	return e.dimension
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "text is empty")
	}

	embeddings, err := e.client.GenerateEmbedding(ctx, e.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(model.ErrProviderUnavailable, "failed to generate embedding",
			goerr.V("cause", err.Error()))
	}
	if len(embeddings) == 0 || len(embeddings[0]) != e.dimension {
		got := 0
		if len(embeddings) > 0 {
			got = len(embeddings[0])
		}
		return nil, goerr.Wrap(model.ErrProviderUnavailable, "embedding generation returned unexpected result",
			goerr.V(model.DimensionKey, got),
			goerr.V(model.ExpectedKey, e.dimension),
		)
	}

	embedding64 := embeddings[0]
	embedding32 := make([]float32, len(embedding64))
	for i, v := range embedding64 {
		embedding32[i] = float32(v)
	}
	return embedding32, nil
}
