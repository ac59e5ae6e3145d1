package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/interfaces"
	"github.com/secmon-lab/zenmemory/pkg/service/embedding/gemini"
	"github.com/secmon-lab/zenmemory/pkg/service/embedding/huggingface"
	"github.com/secmon-lab/zenmemory/pkg/service/embedding/local"
	"github.com/secmon-lab/zenmemory/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Embedding providers
const (
	ProviderLocal       = "local"
	ProviderHuggingFace = "huggingface"
	ProviderGemini      = "gemini"
)

// Embedder holds CLI flags for the embedding provider
type Embedder struct {
	provider   string
	hfToken    string
	hfEndpoint string
	hfTimeout  time.Duration
	gemini     Gemini
}

func (e *Embedder) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "embedder",
			Usage:       "Embedding provider (local, huggingface or gemini)",
			Value:       ProviderLocal,
			Category:    "Embedding",
			Sources:     cli.EnvVars("ZENMEMORY_EMBEDDER"),
			Destination: &e.provider,
		},
		&cli.StringFlag{
			Name:        "hf-token",
			Usage:       "Hugging Face API token (required for huggingface provider)",
			Category:    "Embedding",
			Sources:     cli.EnvVars("ZENMEMORY_HF_TOKEN", "HF_TOKEN"),
			Destination: &e.hfToken,
		},
		&cli.StringFlag{
			Name:        "hf-endpoint",
			Usage:       "Hugging Face feature extraction endpoint",
			Value:       huggingface.DefaultEndpoint,
			Category:    "Embedding",
			Sources:     cli.EnvVars("ZENMEMORY_HF_ENDPOINT"),
			Destination: &e.hfEndpoint,
		},
		&cli.DurationFlag{
			Name:        "hf-timeout",
			Usage:       "Timeout of a single Hugging Face request",
			Value:       huggingface.DefaultTimeout,
			Category:    "Embedding",
			Sources:     cli.EnvVars("ZENMEMORY_HF_TIMEOUT"),
			Destination: &e.hfTimeout,
		},
	}
	return append(flags, e.gemini.Flags()...)
}

func (e *Embedder) Provider() string {
	return e.provider
}

func (e *Embedder) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("provider", e.provider)}
	switch e.provider {
	case ProviderHuggingFace:
		attrs = append(attrs,
			slog.String("endpoint", e.hfEndpoint),
			slog.Duration("timeout", e.hfTimeout),
		)
	case ProviderGemini:
		attrs = append(attrs, e.gemini.LogAttrs()...)
	}
	return slog.GroupValue(attrs...)
}

// Configure builds the configured embedding provider
func (e *Embedder) Configure(ctx context.Context) (interfaces.Embedder, error) {
	switch e.provider {
	case ProviderLocal:
		logging.From(ctx).Info("Using local embedder")
		return local.New(), nil

	case ProviderHuggingFace:
		if e.hfToken == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "hf-token is required when using huggingface provider",
				goerr.V(FieldKey, "hf-token"))
		}
		emb, err := huggingface.New(e.hfToken,
			huggingface.WithEndpoint(e.hfEndpoint),
			huggingface.WithTimeout(e.hfTimeout),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize huggingface embedder")
		}
		logging.From(ctx).Info("Using Hugging Face embedder", "endpoint", e.hfEndpoint)
		return emb, nil

	case ProviderGemini:
		client, err := e.gemini.Configure(ctx)
		if err != nil {
			return nil, err
		}
		logging.From(ctx).Info("Using Gemini embedder", "project_id", e.gemini.projectID)
		return gemini.New(client), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid embedding provider", goerr.V(ProviderKey, e.provider))
	}
}
