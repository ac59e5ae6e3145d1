package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/cli/config"
	"github.com/secmon-lab/zenmemory/pkg/usecase"
	"github.com/secmon-lab/zenmemory/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// engineConfig bundles the flags every command that touches memories needs
type engineConfig struct {
	store    config.Store
	embedder config.Embedder
	engine   config.Engine
}

func (e *engineConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, e.store.Flags()...)
	flags = append(flags, e.embedder.Flags()...)
	flags = append(flags, e.engine.Flags()...)
	return flags
}

// build wires the use cases. The returned closer releases the store.
func (e *engineConfig) build(ctx context.Context) (*usecase.UseCases, func(), error) {
	engineCfg, err := e.engine.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load engine configuration")
	}

	embedder, err := e.embedder.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize embedder")
	}

	store, err := e.store.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize store")
	}
	closer := func() {
		if err := store.Close(); err != nil {
			logging.From(ctx).Error("failed to close store", "error", err.Error())
		}
	}

	logging.From(ctx).Debug("Engine configured",
		"store", &e.store,
		"embedder", &e.embedder,
		"default_limit", engineCfg.DefaultLimit,
		"max_limit", engineCfg.MaxLimit,
	)

	return usecase.New(embedder, store, usecase.WithEngineConfig(engineCfg)), closer, nil
}
