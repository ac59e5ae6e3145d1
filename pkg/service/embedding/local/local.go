// Package local provides an offline embedder based on feature hashing. It
// needs no model files or network and produces the same vector for the same
// text on every machine, which makes it the default for development and
// tests.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/interfaces"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
)

const (
	// DefaultMaxTokens bounds the number of tokens that contribute to a
	// vector. Later tokens are ignored.
	DefaultMaxTokens = 256

	tokenWeight   = 1.0
	conceptWeight = 2.0
)

type Embedder struct {
	dimension int
	maxTokens int
}

var _ interfaces.Embedder = &Embedder{}

type Option func(*Embedder)

func WithDimension(dim int) Option {
	return func(e *Embedder) {
		e.dimension = dim
	}
}

func WithMaxTokens(n int) Option {
	return func(e *Embedder) {
		e.maxTokens = n
	}
}

func New(opts ...Option) *Embedder {
	e := &Embedder{
		dimension: model.EmbeddingDimension,
		maxTokens: DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed hashes tokens and their concepts into signed buckets and returns the
// unit-length result
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "text is empty")
	}

	acc := make([]float64, e.dimension)
	tokens := tokenize(lowered, e.maxTokens)
	for _, tok := range tokens {
		e.add(acc, "t:"+tok.stem, tokenWeight)
		if tok.concept != "" {
			e.add(acc, "c:"+tok.concept, conceptWeight)
		}
	}
	// no surviving token, or features that cancelled out exactly
	if len(tokens) == 0 || squaredNorm(acc) == 0 {
		e.add(acc, "r:"+lowered, tokenWeight)
	}
	norm := math.Sqrt(squaredNorm(acc))

	out := make([]float32, e.dimension)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// add folds a feature into its bucket. The top bit of the same hash picks
// the sign so unrelated features tend to cancel rather than pile up.
func (e *Embedder) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	idx := sum % uint64(e.dimension)
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[idx] += weight
}

func squaredNorm(acc []float64) float64 {
	var sum float64
	for _, v := range acc {
		sum += v * v
	}
	return sum
}

type token struct {
	stem    string
	concept string
}

// tokenize splits on anything that is not a letter or digit, drops
// single-rune tokens and stopwords, and folds simple plurals
func tokenize(text string, maxTokens int) []token {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]token, 0, len(fields))
	for _, f := range fields {
		if len(tokens) == maxTokens {
			break
		}
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		if _, skip := stopwords[f]; skip {
			continue
		}
		stem := foldPlural(f)
		concept, ok := concepts[f]
		if !ok {
			concept = concepts[stem]
		}
		tokens = append(tokens, token{stem: stem, concept: concept})
	}
	return tokens
}

func foldPlural(w string) string {
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}
