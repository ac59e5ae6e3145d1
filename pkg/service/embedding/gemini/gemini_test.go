package gemini_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/m-mizutani/gollem"
	gollemgemini "github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/service/embedding/gemini"
)

type mockLLMClient struct {
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (m *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return nil, nil
}

func (m *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if m.generateEmbeddingFn != nil {
		return m.generateEmbeddingFn(ctx, dimension, input)
	}
	vec := make([]float64, dimension)
	for i := range vec {
		vec[i] = 0.1
	}
	return [][]float64{vec}, nil
}

func TestEmbed(t *testing.T) {
	var gotDim int
	var gotInput []string
	client := &mockLLMClient{
		generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
			gotDim = dimension
			gotInput = input
			vec := make([]float64, dimension)
			vec[0] = 0.5
			return [][]float64{vec}, nil
		},
	}

	e := gemini.New(client)
	vec, err := e.Embed(context.Background(), "My favorite food is pasta")
	gt.NoError(t, err).Required()

	gt.Array(t, vec).Length(model.EmbeddingDimension)
	gt.Value(t, vec[0]).Equal(float32(0.5))
	gt.Number(t, gotDim).Equal(model.EmbeddingDimension)
	gt.Array(t, gotInput).Length(1)
	gt.Value(t, gotInput[0]).Equal("My favorite food is pasta")
}

func TestEmbedErrors(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		called := false
		e := gemini.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				called = true
				return nil, nil
			},
		})
		_, err := e.Embed(context.Background(), "")
		gt.Error(t, err).Is(model.ErrInvalidInput)
		gt.Bool(t, called).False()
	})

	t.Run("client failure", func(t *testing.T) {
		e := gemini.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return nil, errors.New("quota exceeded")
			},
		})
		_, err := e.Embed(context.Background(), "hello")
		gt.Error(t, err).Is(model.ErrProviderUnavailable)
	})

	t.Run("empty result", func(t *testing.T) {
		e := gemini.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return [][]float64{}, nil
			},
		})
		_, err := e.Embed(context.Background(), "hello")
		gt.Error(t, err).Is(model.ErrProviderUnavailable)
	})

	t.Run("wrong dimension", func(t *testing.T) {
		e := gemini.New(&mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return [][]float64{make([]float64, 768)}, nil
			},
		})
		_, err := e.Embed(context.Background(), "hello")
		gt.Error(t, err).Is(model.ErrProviderUnavailable)
	})
}

func TestEmbedWithGemini(t *testing.T) {
	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	if projectID == "" {
		t.Skip("TEST_GEMINI_PROJECT not set")
	}
	location := os.Getenv("TEST_GEMINI_LOCATION")
	if location == "" {
		location = "us-central1"
	}

	ctx := context.Background()
	client, err := gollemgemini.New(ctx, projectID, location)
	gt.NoError(t, err).Required()

	vec, err := gemini.New(client).Embed(ctx, "I love hiking in the mountains")
	gt.NoError(t, err).Required()
	gt.Array(t, vec).Length(model.EmbeddingDimension)
}
