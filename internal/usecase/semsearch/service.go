// Package semsearch ranks an owner's stored embeddings against a query
// vector by cosine similarity.
package semsearch

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/dupdex/internal/domain"
	"github.com/kailas-cloud/dupdex/internal/domain/vectormath"
)

// Service handles semantic similarity search over stored embeddings.
type Service struct {
	vectors VectorReader
	embed   Embedder
}

// New creates a search service.
func New(vectors VectorReader, embed Embedder) *Service {
	return &Service{vectors: vectors, embed: embed}
}

// Search embeds the query text and ranks the owner's stored vectors against it.
func (s *Service) Search(
	ctx context.Context, ownerID, query string, threshold float64, limit int, excludeIDs []string,
) ([]domain.SimilarityResult, error) {
	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	return s.Rank(ctx, ownerID, embResult.Embedding, threshold, limit, excludeIDs)
}

// Rank scores the owner's stored vectors against queryVec by cosine
// similarity, keeps those at or above threshold, and returns them ordered by
// similarity descending with item id ascending as the tie-break.
// Stored vectors of a different dimensionality are an error, not a skip.
func (s *Service) Rank(
	ctx context.Context, ownerID string, queryVec []float32, threshold float64, limit int, excludeIDs []string,
) ([]domain.SimilarityResult, error) {
	stored, err := s.vectors.QueryByOwner(ctx, ownerID, excludeIDs)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}

	results := make([]domain.SimilarityResult, 0, len(stored))
	for _, v := range stored {
		sim, err := vectormath.Cosine(queryVec, v.Vector)
		if err != nil {
			return nil, fmt.Errorf("score item %s: %w", v.ItemID, err)
		}
		if sim < threshold {
			continue
		}
		results = append(results, domain.SimilarityResult{
			ItemID:     v.ItemID,
			Similarity: sim,
			Distance:   1 - sim,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ItemID < results[j].ItemID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}
