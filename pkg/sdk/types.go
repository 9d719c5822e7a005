package dupdex

import "github.com/kailas-cloud/dupdex/internal/domain"

// MatchType identifies which cascade stage produced a duplicate match.
type MatchType string

// Match type constants.
const (
	MatchExact      MatchType = "exact"
	MatchStructural MatchType = "structural"
	MatchSemantic   MatchType = "semantic"
)

// Verdict constants for a duplicate check.
const (
	VerdictDuplicateDetected = "duplicate_detected"
	VerdictPending           = "pending"
)

// Item is a stored content item.
type Item struct {
	ID          string
	OwnerID     string
	Content     string
	IsCanonical bool
	CanonicalID string
}

// Match is a single duplicate candidate.
type Match struct {
	ExistingItemID string
	Similarity     float64
	MatchType      MatchType
	Confidence     float64
	ShouldMerge    bool
	CanonicalID    string
}

// CheckReport is the outcome of a duplicate check.
// Verdict is "duplicate_detected" when the top match exceeds 0.95
// similarity, "pending" otherwise.
type CheckReport struct {
	Matches []Match
	Verdict string
}

// SearchHit is a single semantic search result.
type SearchHit struct {
	ItemID     string
	Similarity float64
	Distance   float64
}

func fromInternalItem(it domain.ContentItem) Item {
	return Item{
		ID:          it.ID,
		OwnerID:     it.OwnerID,
		Content:     it.Content,
		IsCanonical: it.IsCanonical,
		CanonicalID: it.CanonicalID,
	}
}

func fromInternalMatches(matches []domain.DuplicateMatch) []Match {
	out := make([]Match, len(matches))
	for i, m := range matches {
		out[i] = Match{
			ExistingItemID: m.ExistingItemID,
			Similarity:     m.Similarity,
			MatchType:      MatchType(m.MatchType),
			Confidence:     m.Confidence,
			ShouldMerge:    m.ShouldMerge,
			CanonicalID:    m.CanonicalID,
		}
	}
	return out
}

func fromInternalResults(results []domain.SimilarityResult) []SearchHit {
	out := make([]SearchHit, len(results))
	for i, r := range results {
		out[i] = SearchHit{
			ItemID:     r.ItemID,
			Similarity: r.Similarity,
			Distance:   r.Distance,
		}
	}
	return out
}
