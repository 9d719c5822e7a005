package domain

// MatchType identifies which cascade stage produced a duplicate match.
type MatchType string

const (
	// MatchExact means byte-equal normalized content.
	MatchExact MatchType = "exact"
	// MatchStructural means fingerprint similarity above threshold.
	MatchStructural MatchType = "structural"
	// MatchSemantic means embedding cosine similarity above threshold.
	MatchSemantic MatchType = "semantic"
)

// SimilarityResult is a single semantic search hit, similarity normalized
// so higher means more similar.
type SimilarityResult struct {
	ItemID     string
	Similarity float64
	Distance   float64
}

// DuplicateMatch is one duplicate candidate produced by the cascade.
// Within one detection call ExistingItemID is unique across the returned
// list; matches from different stages for the same item are merged keeping
// the maximum similarity.
type DuplicateMatch struct {
	ExistingItemID string
	Similarity     float64
	MatchType      MatchType
	Confidence     float64
	ShouldMerge    bool
	CanonicalID    string
}
