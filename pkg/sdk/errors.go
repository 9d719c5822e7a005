package dupdex

import "github.com/kailas-cloud/dupdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrItemNotFound           = domain.ErrItemNotFound
	ErrEmbeddingNotFound      = domain.ErrEmbeddingNotFound
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrStoreUnavailable       = domain.ErrStoreUnavailable
)
