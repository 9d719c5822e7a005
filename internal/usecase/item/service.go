// Package item handles content item lifecycle with automatic vectorization.
package item

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/dupdex/internal/domain"
)

// Service handles item create and delete with automatic vectorization.
type Service struct {
	items    Repository
	vectors  VectorStore
	embed    Embedder
	provider string
	model    string
}

// New creates an item service. provider and model annotate stored vectors.
func New(items Repository, vectors VectorStore, embed Embedder, provider, model string) *Service {
	return &Service{
		items:    items,
		vectors:  vectors,
		embed:    embed,
		provider: provider,
		model:    model,
	}
}

// Create stores a new canonical item and its embedding. The embedding is
// generated first so a provider failure leaves no partial state behind.
func (s *Service) Create(ctx context.Context, ownerID, content string) (domain.ContentItem, error) {
	if strings.TrimSpace(content) == "" {
		return domain.ContentItem{}, fmt.Errorf("empty content: %w", domain.ErrInvalidRequest)
	}

	result, err := s.embed.Embed(ctx, content)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("vectorize item: %w", err)
	}

	item := domain.ContentItem{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Content:     content,
		IsCanonical: true,
	}

	if err := s.items.Put(ctx, item); err != nil {
		return domain.ContentItem{}, fmt.Errorf("store item: %w", err)
	}

	vec := domain.EmbeddingVector{
		ItemID:     item.ID,
		Provider:   s.provider,
		Model:      s.model,
		Dimensions: len(result.Embedding),
		Vector:     result.Embedding,
		TokenCount: result.TotalTokens,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.vectors.Upsert(ctx, ownerID, vec); err != nil {
		return domain.ContentItem{}, fmt.Errorf("store vector: %w", err)
	}

	return item, nil
}

// Get returns an item by id.
func (s *Service) Get(ctx context.Context, itemID string) (domain.ContentItem, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Delete removes an item and its embedding. Deleting an absent item is a no-op.
func (s *Service) Delete(ctx context.Context, ownerID, itemID string) error {
	if err := s.vectors.Delete(ctx, ownerID, itemID); err != nil {
		return fmt.Errorf("delete vector: %w", err)
	}
	if err := s.items.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
