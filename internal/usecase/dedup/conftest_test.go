package dedup

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dupdex/internal/domain"
	"github.com/kailas-cloud/dupdex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterDedupMetrics()
	os.Exit(m.Run())
}

type mockItems struct {
	exact      []domain.ItemRef
	exactErr   error
	exactCalls int

	pool       []domain.ContentItem
	poolErr    error
	poolCalls  int
	gotLimit   int

	byID   map[string]domain.ContentItem
	getErr error
}

func (m *mockItems) FindExactMatches(_ context.Context, _, _ string) ([]domain.ItemRef, error) {
	m.exactCalls++
	return m.exact, m.exactErr
}

func (m *mockItems) ListOwnerItems(_ context.Context, _ string, limit int) ([]domain.ContentItem, error) {
	m.poolCalls++
	m.gotLimit = limit
	return m.pool, m.poolErr
}

func (m *mockItems) Get(_ context.Context, itemID string) (domain.ContentItem, error) {
	if m.getErr != nil {
		return domain.ContentItem{}, m.getErr
	}
	item, ok := m.byID[itemID]
	if !ok {
		return domain.ContentItem{}, domain.ErrItemNotFound
	}
	return item, nil
}

type mockSearcher struct {
	results []domain.SimilarityResult
	err     error
	calls   int
	gotExcl []string
}

func (m *mockSearcher) Rank(_ context.Context, _ string, _ []float32, _ float64, _ int, excludeIDs []string) ([]domain.SimilarityResult, error) {
	m.calls++
	m.gotExcl = excludeIDs
	return m.results, m.err
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func newTestService(items *mockItems, search *mockSearcher, embed *mockEmbedder, cfg Config) *Service {
	if items.byID == nil {
		items.byID = map[string]domain.ContentItem{}
	}
	return New(items, search, embed, cfg, zap.NewNop())
}
