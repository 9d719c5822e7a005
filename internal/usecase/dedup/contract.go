package dedup

import (
	"context"

	"github.com/kailas-cloud/dupdex/internal/domain"
)

// ItemReader reads the owner's items for the exact and structural stages
// and resolves canonical references.
type ItemReader interface {
	FindExactMatches(ctx context.Context, ownerID, normalizedContent string) ([]domain.ItemRef, error)
	ListOwnerItems(ctx context.Context, ownerID string, limit int) ([]domain.ContentItem, error)
	Get(ctx context.Context, itemID string) (domain.ContentItem, error)
}

// Searcher ranks stored embeddings against a query vector.
type Searcher interface {
	Rank(ctx context.Context, ownerID string, queryVec []float32, threshold float64, limit int, excludeIDs []string) ([]domain.SimilarityResult, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
