// Package vectormath provides pure similarity functions over fixed-length
// float32 vectors. No I/O, no state; every function is symmetric in its
// arguments and returns an error wrapping domain.ErrDimensionMismatch when
// the vectors differ in length.
package vectormath

import (
	"math"

	"github.com/kailas-cloud/dupdex/internal/domain"
)

// Cosine returns dot(a,b) / (|a|*|b|).
// When either norm is zero the result is 0: no directional relationship
// exists, and returning 0 avoids a division by zero without erroring.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.NewDimensionMismatch(len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// EuclideanSimilarity maps euclidean distance [0, inf) to similarity (0, 1]
// via 1 / (1 + distance).
func EuclideanSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.NewDimensionMismatch(len(a), len(b))
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return 1 / (1 + math.Sqrt(sum)), nil
}

// DotProduct returns the raw sum of elementwise products.
// Unnormalized: interpreting the scale is the caller's responsibility.
func DotProduct(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.NewDimensionMismatch(len(a), len(b))
	}

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}

	return dot, nil
}

// ManhattanSimilarity returns 1 / (1 + sum of |a[i]-b[i]|).
func ManhattanSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.NewDimensionMismatch(len(a), len(b))
	}

	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}

	return 1 / (1 + sum), nil
}
