package local_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/service/embedding/local"
)

func embed(t *testing.T, e *local.Embedder, text string) []float32 {
	t.Helper()
	v, err := e.Embed(context.Background(), text)
	gt.NoError(t, err).Required()
	return v
}

func TestEmbedShape(t *testing.T) {
	e := local.New()
	gt.Number(t, e.Dimension()).Equal(model.EmbeddingDimension)

	v := embed(t, e, "My favorite food is pasta")
	gt.Array(t, v).Length(model.EmbeddingDimension)

	norm := model.InnerProduct(v, v)
	gt.Bool(t, norm > 0.9999 && norm < 1.0001).True()
}

func TestEmbedDeterministic(t *testing.T) {
	text := "I love hiking in the mountains"

	a := embed(t, local.New(), text)
	b := embed(t, local.New(), text)
	gt.Value(t, a).Equal(b)

	t.Run("concurrent calls agree", func(t *testing.T) {
		e := local.New()
		want := embed(t, e, text)

		var wg sync.WaitGroup
		results := make([][]float32, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], _ = e.Embed(context.Background(), text)
			}(i)
		}
		wg.Wait()

		for _, got := range results {
			gt.Value(t, got).Equal(want)
		}
	})
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	e := local.New()
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := e.Embed(context.Background(), text)
		gt.Error(t, err).Is(model.ErrInvalidInput)
	}
}

func TestEmbedRelatedTextsAreCloser(t *testing.T) {
	e := local.New()

	tests := []struct {
		query   string
		related string
		other   string
	}{
		{
			query:   "what do I like to eat?",
			related: "My favorite food is pasta",
			other:   "I love hiking in the mountains",
		},
		{
			query:   "Tell me about my pet",
			related: "I adore my dog",
			other:   "My favorite food is pasta",
		},
		{
			query:   "where did I travel last year?",
			related: "I visited Japan on vacation",
			other:   "My boss is strict",
		},
		{
			query:   "what drinks do I enjoy",
			related: "I drink coffee every morning",
			other:   "I love hiking in the mountains",
		},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q := embed(t, e, tt.query)
			related := model.InnerProduct(q, embed(t, e, tt.related))
			other := model.InnerProduct(q, embed(t, e, tt.other))
			gt.Bool(t, related > other).True()
		})
	}
}

func TestEmbedNormalizesSurfaceForms(t *testing.T) {
	e := local.New()

	t.Run("case and punctuation", func(t *testing.T) {
		gt.Value(t, embed(t, e, "Pasta!")).Equal(embed(t, e, "pasta"))
	})

	t.Run("simple plurals", func(t *testing.T) {
		gt.Value(t, embed(t, e, "mountains")).Equal(embed(t, e, "mountain"))
	})

	t.Run("stopwords only still yields a unit vector", func(t *testing.T) {
		v := embed(t, e, "is it?")
		norm := model.InnerProduct(v, v)
		gt.Bool(t, norm > 0.9999 && norm < 1.0001).True()
	})
}

func TestEmbedTruncatesTokens(t *testing.T) {
	e := local.New(local.WithMaxTokens(3))
	gt.Value(t, embed(t, e, "alpha beta gamma delta epsilon")).Equal(embed(t, e, "alpha beta gamma"))

	long := strings.Repeat("word ", local.DefaultMaxTokens) + "pasta"
	def := local.New()
	gt.Value(t, embed(t, def, long)).Equal(embed(t, def, strings.Repeat("word ", local.DefaultMaxTokens)))
}

func TestWithDimension(t *testing.T) {
	e := local.New(local.WithDimension(16))
	gt.Number(t, e.Dimension()).Equal(16)
	gt.Array(t, embed(t, e, "hello world")).Length(16)
}
