// Package dedup implements the three-stage duplicate detection cascade:
// exact match on normalized content, structural fingerprint comparison,
// then semantic similarity over stored embeddings. An exact hit
// short-circuits the later stages. Stage failures degrade the result set
// instead of failing the call.
package dedup

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dupdex/internal/domain"
	"github.com/kailas-cloud/dupdex/internal/domain/fingerprint"
	"github.com/kailas-cloud/dupdex/internal/metrics"
)

// Import pipeline verdicts derived from the top match.
const (
	VerdictDuplicateDetected = "duplicate_detected"
	VerdictPending           = "pending"

	// Similarity above which the top match decides the verdict.
	verdictThreshold = 0.95
)

const (
	stageExact      = "exact"
	stageStructural = "structural"
	stageSemantic   = "semantic"
)

// Service runs the duplicate detection cascade for one owner scope at a time.
type Service struct {
	items  ItemReader
	search Searcher
	embed  Embedder
	cfg    Config
	logger *zap.Logger
}

// New creates a duplicate detection service.
func New(items ItemReader, search Searcher, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		items:  items,
		search: search,
		embed:  embed,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Check runs the cascade for candidate content in the owner's scope.
// It never fails: stage errors are logged and counted, and the call returns
// whatever the surviving stages produced. name is used for logging only.
func (s *Service) Check(ctx context.Context, ownerID, name, content string) []domain.DuplicateMatch {
	var matches []domain.DuplicateMatch

	if !s.cfg.DisableExact {
		if exact := s.checkExact(ctx, ownerID, content); len(exact) > 0 {
			// Exact identity makes further scoring pointless.
			matches = truncate(exact, s.cfg.MaxCandidates)
			s.finish(ownerID, name, matches)
			return matches
		}
	}

	var structural []domain.DuplicateMatch
	if !s.cfg.DisableStructural {
		structural = s.checkStructural(ctx, ownerID, content)
	}

	var semantic []domain.DuplicateMatch
	if !s.cfg.DisableSemantic {
		semantic = s.checkSemantic(ctx, ownerID, content, matchedIDs(structural))
	}

	matches = fuse(structural, semantic, s.cfg.MaxCandidates)
	s.resolveCanonical(ctx, matches)
	s.finish(ownerID, name, matches)
	return matches
}

// Verdict maps a match list to the import pipeline state: the top match
// decides, everything else is review-pending.
func Verdict(matches []domain.DuplicateMatch) string {
	if len(matches) > 0 && matches[0].Similarity > verdictThreshold {
		return VerdictDuplicateDetected
	}
	return VerdictPending
}

func (s *Service) checkExact(ctx context.Context, ownerID, content string) []domain.DuplicateMatch {
	defer s.observeStage(stageExact, time.Now())

	refs, err := s.items.FindExactMatches(ctx, ownerID, domain.NormalizeContent(content))
	if err != nil {
		s.stageFailed(stageExact, ownerID, err)
		return nil
	}

	matches := make([]domain.DuplicateMatch, 0, len(refs))
	for _, ref := range refs {
		matches = append(matches, domain.DuplicateMatch{
			ExistingItemID: ref.ID,
			Similarity:     1.0,
			MatchType:      domain.MatchExact,
			Confidence:     confidenceExact,
			ShouldMerge:    true,
			CanonicalID:    ref.ResolveCanonical(),
		})
	}
	sortMatches(matches)
	return matches
}

func (s *Service) checkStructural(ctx context.Context, ownerID, content string) []domain.DuplicateMatch {
	defer s.observeStage(stageStructural, time.Now())

	pool, err := s.items.ListOwnerItems(ctx, ownerID, s.cfg.MaxCandidates*s.cfg.PoolFactor)
	if err != nil {
		s.stageFailed(stageStructural, ownerID, err)
		return nil
	}

	queryFP := fingerprint.Extract(content)

	var matches []domain.DuplicateMatch
	for _, item := range pool {
		sim := fingerprint.Similarity(queryFP, fingerprint.Extract(item.Content))
		if sim < s.cfg.Threshold {
			continue
		}
		matches = append(matches, domain.DuplicateMatch{
			ExistingItemID: item.ID,
			Similarity:     sim,
			MatchType:      domain.MatchStructural,
			Confidence:     confidenceStructural,
			ShouldMerge:    sim > mergeThreshold,
			CanonicalID:    item.Ref().ResolveCanonical(),
		})
	}

	sortMatches(matches)
	return truncate(matches, s.cfg.MaxCandidates)
}

func (s *Service) checkSemantic(ctx context.Context, ownerID, content string, excludeIDs []string) []domain.DuplicateMatch {
	defer s.observeStage(stageSemantic, time.Now())

	embResult, err := s.embed.Embed(ctx, content)
	if err != nil {
		s.stageFailed(stageSemantic, ownerID, err)
		return nil
	}

	results, err := s.search.Rank(ctx, ownerID, embResult.Embedding, s.cfg.Threshold, s.cfg.MaxCandidates, excludeIDs)
	if err != nil {
		s.stageFailed(stageSemantic, ownerID, err)
		return nil
	}

	matches := make([]domain.DuplicateMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, domain.DuplicateMatch{
			ExistingItemID: r.ItemID,
			Similarity:     r.Similarity,
			MatchType:      domain.MatchSemantic,
			Confidence:     confidenceSemantic,
			ShouldMerge:    r.Similarity > mergeThreshold,
		})
	}
	return matches
}

// fuse unions structural and semantic matches. The same item keeps its
// higher-similarity entry.
func fuse(structural, semantic []domain.DuplicateMatch, maxCandidates int) []domain.DuplicateMatch {
	best := make(map[string]domain.DuplicateMatch, len(structural)+len(semantic))
	for _, m := range append(structural, semantic...) {
		if prev, ok := best[m.ExistingItemID]; ok && prev.Similarity >= m.Similarity {
			continue
		}
		best[m.ExistingItemID] = m
	}

	fused := make([]domain.DuplicateMatch, 0, len(best))
	for _, m := range best {
		fused = append(fused, m)
	}
	sortMatches(fused)
	return truncate(fused, maxCandidates)
}

// resolveCanonical fills CanonicalID for matches that do not carry one yet
// (semantic matches surface as bare item ids). A failed lookup falls back to
// the item itself.
func (s *Service) resolveCanonical(ctx context.Context, matches []domain.DuplicateMatch) {
	for i := range matches {
		if matches[i].CanonicalID != "" {
			continue
		}
		item, err := s.items.Get(ctx, matches[i].ExistingItemID)
		if err != nil {
			s.logger.Warn("Failed to resolve canonical item",
				zap.String("item_id", matches[i].ExistingItemID),
				zap.Error(err),
			)
			matches[i].CanonicalID = matches[i].ExistingItemID
			continue
		}
		matches[i].CanonicalID = item.Ref().ResolveCanonical()
	}
}

func (s *Service) finish(ownerID, name string, matches []domain.DuplicateMatch) {
	for _, m := range matches {
		metrics.DedupMatchesTotal.WithLabelValues(string(m.MatchType)).Inc()
	}
	verdict := Verdict(matches)
	metrics.DedupChecksTotal.WithLabelValues(verdict).Inc()

	s.logger.Debug("Duplicate check completed",
		zap.String("owner_id", ownerID),
		zap.String("name", name),
		zap.Int("matches", len(matches)),
		zap.String("verdict", verdict),
	)
}

func (s *Service) stageFailed(stage, ownerID string, err error) {
	metrics.DedupStageErrorsTotal.WithLabelValues(stage).Inc()
	s.logger.Warn("Cascade stage failed, continuing without its matches",
		zap.String("stage", stage),
		zap.String("owner_id", ownerID),
		zap.Error(err),
	)
}

func (s *Service) observeStage(stage string, start time.Time) {
	metrics.DedupStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func sortMatches(matches []domain.DuplicateMatch) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ExistingItemID < matches[j].ExistingItemID
	})
}

func truncate(matches []domain.DuplicateMatch, limit int) []domain.DuplicateMatch {
	if len(matches) > limit {
		return matches[:limit]
	}
	return matches
}

func matchedIDs(matches []domain.DuplicateMatch) []string {
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ExistingItemID
	}
	return ids
}
