package semsearch

import (
	"context"

	"github.com/kailas-cloud/dupdex/internal/domain"
)

// VectorReader reads stored embedding vectors for ranking.
type VectorReader interface {
	QueryByOwner(ctx context.Context, ownerID string, excludeIDs []string) ([]domain.EmbeddingVector, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
