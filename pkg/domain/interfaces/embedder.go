package interfaces

import "context"

// Embedder turns text into a fixed-dimension vector. Implementations are
// deterministic for a given instance and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
