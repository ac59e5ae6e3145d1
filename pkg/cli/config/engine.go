package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/zenmemory/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// Engine holds the path of the optional engine tuning file
type Engine struct {
	path string
}

// engineFile is the TOML layout of the tuning file
//
//	[engine]
//	default_limit = 5
//	max_limit = 100
//	embed_timeout = "10s"
//	store_timeout = "10s"
type engineFile struct {
	Engine struct {
		DefaultLimit int    `toml:"default_limit"`
		MaxLimit     int    `toml:"max_limit"`
		EmbedTimeout string `toml:"embed_timeout"`
		StoreTimeout string `toml:"store_timeout"`
	} `toml:"engine"`
}

func (e *Engine) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "engine-config",
			Usage:       "Path to a TOML file tuning recall limits and timeouts",
			Category:    "Engine",
			Sources:     cli.EnvVars("ZENMEMORY_ENGINE_CONFIG"),
			Destination: &e.path,
		},
	}
}

// Configure returns the default engine config, overridden by the file when
// a path is set
func (e *Engine) Configure() (domainConfig.EngineConfig, error) {
	if e.path == "" {
		return domainConfig.DefaultEngineConfig(), nil
	}
	return LoadEngineConfig(e.path)
}

// LoadEngineConfig reads the TOML tuning file at path. Missing keys keep
// their defaults.
func LoadEngineConfig(path string) (domainConfig.EngineConfig, error) {
	cfg := domainConfig.DefaultEngineConfig()

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, goerr.Wrap(ErrConfigNotFound, "engine config not found", goerr.V(ConfigPathKey, path))
	}
	if err != nil {
		return cfg, goerr.Wrap(err, "failed to read engine config", goerr.V(ConfigPathKey, path))
	}

	var file engineFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return cfg, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if v := file.Engine.DefaultLimit; v != 0 {
		if v < 0 {
			return cfg, goerr.Wrap(ErrInvalidConfig, "default_limit must be positive",
				goerr.V(ConfigPathKey, path), goerr.V(FieldKey, "default_limit"))
		}
		cfg.DefaultLimit = v
	}
	if v := file.Engine.MaxLimit; v != 0 {
		if v < 0 {
			return cfg, goerr.Wrap(ErrInvalidConfig, "max_limit must be positive",
				goerr.V(ConfigPathKey, path), goerr.V(FieldKey, "max_limit"))
		}
		cfg.MaxLimit = v
	}
	if cfg.DefaultLimit > cfg.MaxLimit {
		return cfg, goerr.Wrap(ErrInvalidConfig, "default_limit exceeds max_limit",
			goerr.V(ConfigPathKey, path), goerr.V("default_limit", cfg.DefaultLimit), goerr.V("max_limit", cfg.MaxLimit))
	}

	if cfg.EmbedTimeout, err = parseTimeout(path, "embed_timeout", file.Engine.EmbedTimeout, cfg.EmbedTimeout); err != nil {
		return cfg, err
	}
	if cfg.StoreTimeout, err = parseTimeout(path, "store_timeout", file.Engine.StoreTimeout, cfg.StoreTimeout); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func parseTimeout(path, field, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback, goerr.Wrap(ErrInvalidConfig, "timeout must be a positive duration",
			goerr.V(ConfigPathKey, path), goerr.V(FieldKey, field), goerr.V("value", raw))
	}
	return d, nil
}
