package model

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
)

// CheckDimension rejects vectors whose length differs from dim. Vectors are
// never truncated or padded.
func CheckDimension(vec []float32, dim int) error {
	if len(vec) != dim {
		return goerr.Wrap(ErrInvalidInput, "embedding dimension mismatch",
			goerr.V(DimensionKey, len(vec)),
			goerr.V(ExpectedKey, dim),
		)
	}
	return nil
}

// Normalize returns a unit-length copy of vec. Zero-norm and non-finite
// vectors have no direction and are rejected.
func Normalize(vec []float32) ([]float32, error) {
	var sum float64
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, goerr.Wrap(ErrInvalidInput, "embedding has non-finite value")
		}
		sum += f * f
	}
	if sum == 0 {
		return nil, goerr.Wrap(ErrInvalidInput, "embedding has zero norm")
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out, nil
}

// InnerProduct is the cosine similarity of two unit vectors of equal length
func InnerProduct(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
