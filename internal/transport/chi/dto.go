package chi

import "github.com/kailas-cloud/dupdex/internal/domain"

// ErrorCode identifies an API error class.
type ErrorCode string

const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeValidationFailed     ErrorCode = "validation_failed"
	CodeUnauthorized         ErrorCode = "unauthorized"
	CodeItemNotFound         ErrorCode = "item_not_found"
	CodeEmbeddingNotFound    ErrorCode = "embedding_not_found"
	CodeDimensionMismatch    ErrorCode = "dimension_mismatch"
	CodeEmbeddingProviderErr ErrorCode = "embedding_provider_error"
	CodeStoreUnavailable     ErrorCode = "store_unavailable"
	CodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the error body for all endpoints.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CreateItemRequest is the body of POST /v1/owners/{ownerID}/items.
type CreateItemRequest struct {
	Content string `json:"content"`
}

// ItemResponse describes a stored content item.
type ItemResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Content     string `json:"content"`
	IsCanonical bool   `json:"is_canonical"`
	CanonicalID string `json:"canonical_id,omitempty"`
}

// CheckDuplicatesRequest is the body of POST /v1/owners/{ownerID}/duplicates/check.
type CheckDuplicatesRequest struct {
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// DuplicateMatchItem is one cascade match.
type DuplicateMatchItem struct {
	ExistingItemID string  `json:"existing_item_id"`
	Similarity     float64 `json:"similarity"`
	MatchType      string  `json:"match_type"`
	Confidence     float64 `json:"confidence"`
	ShouldMerge    bool    `json:"should_merge"`
	CanonicalID    string  `json:"canonical_id,omitempty"`
}

// CheckDuplicatesResponse carries cascade matches plus the import verdict.
type CheckDuplicatesResponse struct {
	Matches []DuplicateMatchItem `json:"matches"`
	Verdict string               `json:"verdict"`
}

// SearchRequest is the body of POST /v1/owners/{ownerID}/search.
type SearchRequest struct {
	Query     string   `json:"query"`
	Threshold *float64 `json:"threshold,omitempty"`
	Limit     *int     `json:"limit,omitempty"`
}

// SearchResultItem is one ranked result.
type SearchResultItem struct {
	ItemID     string  `json:"item_id"`
	Similarity float64 `json:"similarity"`
	Distance   float64 `json:"distance"`
}

// SearchResponse is the body returned by the search endpoint.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func itemToResponse(item domain.ContentItem) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		OwnerID:     item.OwnerID,
		Content:     item.Content,
		IsCanonical: item.IsCanonical,
		CanonicalID: item.CanonicalID,
	}
}

func matchesToResponse(matches []domain.DuplicateMatch) []DuplicateMatchItem {
	out := make([]DuplicateMatchItem, len(matches))
	for i, m := range matches {
		out[i] = DuplicateMatchItem{
			ExistingItemID: m.ExistingItemID,
			Similarity:     m.Similarity,
			MatchType:      string(m.MatchType),
			Confidence:     m.Confidence,
			ShouldMerge:    m.ShouldMerge,
			CanonicalID:    m.CanonicalID,
		}
	}
	return out
}

func resultsToResponse(results []domain.SimilarityResult) []SearchResultItem {
	out := make([]SearchResultItem, len(results))
	for i, r := range results {
		out[i] = SearchResultItem{
			ItemID:     r.ItemID,
			Similarity: r.Similarity,
			Distance:   r.Distance,
		}
	}
	return out
}
