package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

const DefaultGeminiLocation = "us-central1"

// Gemini selects the Vertex AI project that serves embeddings for the
// gemini embedding provider
type Gemini struct {
	projectID string
	location  string
}

func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID serving Gemini embeddings (required for gemini provider)",
			Category:    "Embedding",
			Sources:     cli.EnvVars("ZENMEMORY_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Vertex AI region of the embedding model",
			Value:       DefaultGeminiLocation,
			Category:    "Embedding",
			Sources:     cli.EnvVars("ZENMEMORY_GEMINI_LOCATION"),
			Destination: &g.location,
		},
	}
}

func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
	}
}

// Configure opens the client used for GenerateEmbedding. A missing project
// is a configuration error since the provider has no offline mode.
func (g *Gemini) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if g.projectID == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "gemini-project is required when using gemini provider",
			goerr.V(FieldKey, "gemini-project"))
	}

	location := g.location
	if location == "" {
		location = DefaultGeminiLocation
	}

	client, err := gemini.New(ctx, g.projectID, location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client",
			goerr.V("project_id", g.projectID), goerr.V("location", location))
	}

	return client, nil
}
