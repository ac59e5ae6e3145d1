package config

import "time"

// EngineConfig tunes the memory engine
type EngineConfig struct {
	DefaultLimit int           // used when recall is asked for 0 results
	MaxLimit     int           // larger recall limits are clamped to this
	EmbedTimeout time.Duration // bound on a single embedding call
	StoreTimeout time.Duration // bound on a single store call
}

const (
	DefaultRecallLimit  = 5
	DefaultMaxLimit     = 100
	DefaultEmbedTimeout = 10 * time.Second
	DefaultStoreTimeout = 10 * time.Second
)

// DefaultEngineConfig returns the settings used when nothing is configured
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultLimit: DefaultRecallLimit,
		MaxLimit:     DefaultMaxLimit,
		EmbedTimeout: DefaultEmbedTimeout,
		StoreTimeout: DefaultStoreTimeout,
	}
}
