package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrItemNotFound signals a missing content item.
	ErrItemNotFound = errors.New("content item not found")
	// ErrEmbeddingNotFound signals that an item has no stored vector.
	ErrEmbeddingNotFound = errors.New("embedding not found")
	// ErrDimensionMismatch signals that two compared vectors differ in length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrStoreUnavailable signals a persistence failure reading or writing vectors or items.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvalidRequest signals malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
)

// DimensionMismatchError wraps ErrDimensionMismatch with both vector lengths.
type DimensionMismatchError struct {
	LenA, LenB int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: %d vs %d", ErrDimensionMismatch.Error(), e.LenA, e.LenB)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(lenA, lenB int) error {
	return &DimensionMismatchError{LenA: lenA, LenB: lenB}
}
