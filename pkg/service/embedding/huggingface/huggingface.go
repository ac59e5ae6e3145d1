// Package huggingface embeds text with sentence-transformers/all-MiniLM-L6-v2
// through the Hugging Face Inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/interfaces"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/utils/safe"
)

const (
	DefaultEndpoint = "https://api-inference.huggingface.co/pipeline/feature-extraction/sentence-transformers/all-MiniLM-L6-v2"
	DefaultTimeout  = 30 * time.Second

	// MaxInputRunes caps what is sent. The model itself keeps only its first
	// 256 word pieces.
	MaxInputRunes = 4096

	maxErrorBody = 512
)

type Embedder struct {
	token     string
	endpoint  string
	client    *http.Client
	dimension int
}

var _ interfaces.Embedder = &Embedder{}

type Option func(*Embedder)

func WithEndpoint(url string) Option {
	return func(e *Embedder) {
		e.endpoint = url
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(e *Embedder) {
		e.client = client
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *Embedder) {
		e.client = &http.Client{Timeout: d}
	}
}

func WithDimension(dim int) Option {
	return func(e *Embedder) {
		e.dimension = dim
	}
}

func New(token string, opts ...Option) (*Embedder, error) {
	if token == "" {
		return nil, goerr.New("Hugging Face token is required")
	}

	e := &Embedder{
		token:     token,
		endpoint:  DefaultEndpoint,
		client:    &http.Client{Timeout: DefaultTimeout},
		dimension: model.EmbeddingDimension,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Embedder) Dimension() int {
	return e.dimension
}

type request struct {
	Inputs  string         `json:"inputs"`
	Options requestOptions `json:"options"`
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "text is empty")
	}
	text = truncateRunes(text, MaxInputRunes)

	body, err := json.Marshal(request{Inputs: text, Options: requestOptions{WaitForModel: true}})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal embedding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build embedding request", goerr.V("endpoint", e.endpoint))
	}
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(model.ErrProviderUnavailable, "embedding request failed",
			goerr.V("endpoint", e.endpoint),
			goerr.V("cause", err.Error()),
		)
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, goerr.Wrap(model.ErrProviderUnavailable, "embedding provider returned error status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(snippet)),
		)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(model.ErrProviderUnavailable, "failed to read embedding response",
			goerr.V("cause", err.Error()))
	}

	vec, err := decodeVector(raw)
	if err != nil {
		return nil, err
	}
	if len(vec) != e.dimension {
		return nil, goerr.Wrap(model.ErrProviderUnavailable, "embedding provider returned wrong dimension",
			goerr.V(model.DimensionKey, len(vec)),
			goerr.V(model.ExpectedKey, e.dimension),
		)
	}
	return vec, nil
}

// decodeVector accepts both a flat vector and a batch of one.
func decodeVector(raw []byte) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}

	var nested [][]float32
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) == 0 {
			return nil, goerr.Wrap(model.ErrProviderUnavailable, "embedding response is empty")
		}
		return nested[0], nil
	}

	return nil, goerr.Wrap(model.ErrProviderUnavailable, "unexpected embedding response shape",
		goerr.V("body", string(raw[:min(len(raw), maxErrorBody)])))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
