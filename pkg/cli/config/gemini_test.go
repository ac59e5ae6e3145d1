package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/zenmemory/pkg/cli/config"
)

func TestGemini_Configure(t *testing.T) {
	t.Run("missing project is a configuration error", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "us-central1")
		client, err := cfg.Configure(t.Context())
		gt.True(t, errors.Is(err, config.ErrInvalidConfig))
		gt.Value(t, client).Nil()
	})

	t.Run("exposes project and location flags", func(t *testing.T) {
		cfg := config.NewGeminiForTest("", "")
		flags := cfg.Flags()
		gt.Array(t, flags).Length(2)
		gt.A(t, flags[1].Names()).Equal([]string{"gemini-location"})
	})
}
