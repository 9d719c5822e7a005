package item

import (
	"context"

	"github.com/kailas-cloud/dupdex/internal/domain"
)

// Repository stores content items.
type Repository interface {
	Put(ctx context.Context, item domain.ContentItem) error
	Get(ctx context.Context, itemID string) (domain.ContentItem, error)
	Delete(ctx context.Context, itemID string) error
}

// VectorStore stores embedding vectors alongside items.
type VectorStore interface {
	Upsert(ctx context.Context, ownerID string, vec domain.EmbeddingVector) error
	Delete(ctx context.Context, ownerID, itemID string) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
