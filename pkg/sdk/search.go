package dupdex

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultSearchThreshold = 0.8
	defaultSearchLimit     = 10
)

// SearchService runs semantic searches over a single owner's items.
type SearchService struct {
	ownerID string
	svc     searchUseCase
	obs     *observer
}

// Query embeds the query text and returns the owner's items ranked by
// cosine similarity, most similar first. threshold <= 0 defaults to 0.8,
// limit <= 0 defaults to 10.
func (s *SearchService) Query(
	ctx context.Context, query string, threshold float64, limit int,
) (_ []SearchHit, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.query", start, err) }()

	if threshold <= 0 {
		threshold = defaultSearchThreshold
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	results, err := s.svc.Search(ctx, s.ownerID, query, threshold, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return fromInternalResults(results), nil
}
