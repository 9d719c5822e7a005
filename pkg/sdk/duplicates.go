package dupdex

import (
	"context"
	"time"

	dedupuc "github.com/kailas-cloud/dupdex/internal/usecase/dedup"
)

// DedupService runs duplicate checks against a single owner's items.
type DedupService struct {
	ownerID string
	svc     dedupUseCase
	obs     *observer
}

// Check runs the detection cascade for candidate content and returns
// ranked duplicate matches with a verdict. Stage failures degrade the
// result instead of failing the call, so Check never returns an error.
// name is an optional label used for diagnostics only.
func (s *DedupService) Check(ctx context.Context, name, content string) CheckReport {
	start := time.Now()
	defer func() { s.obs.observe("dedup.check", start, nil) }()

	matches := s.svc.Check(ctx, s.ownerID, name, content)
	return CheckReport{
		Matches: fromInternalMatches(matches),
		Verdict: dedupuc.Verdict(matches),
	}
}
