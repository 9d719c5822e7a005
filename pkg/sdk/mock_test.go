package dupdex

import (
	"context"

	"github.com/kailas-cloud/dupdex/internal/domain"
	healthuc "github.com/kailas-cloud/dupdex/internal/usecase/health"
)

// --- itemUseCase mock ---

type mockItemUC struct {
	createFn func(ctx context.Context, ownerID, content string) (domain.ContentItem, error)
	getFn    func(ctx context.Context, itemID string) (domain.ContentItem, error)
	deleteFn func(ctx context.Context, ownerID, itemID string) error
}

func (m *mockItemUC) Create(ctx context.Context, ownerID, content string) (domain.ContentItem, error) {
	return m.createFn(ctx, ownerID, content)
}

func (m *mockItemUC) Get(ctx context.Context, itemID string) (domain.ContentItem, error) {
	return m.getFn(ctx, itemID)
}

func (m *mockItemUC) Delete(ctx context.Context, ownerID, itemID string) error {
	return m.deleteFn(ctx, ownerID, itemID)
}

// --- dedupUseCase mock ---

type mockDedupUC struct {
	checkFn func(ctx context.Context, ownerID, name, content string) []domain.DuplicateMatch
}

func (m *mockDedupUC) Check(ctx context.Context, ownerID, name, content string) []domain.DuplicateMatch {
	return m.checkFn(ctx, ownerID, name, content)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, ownerID, query string, threshold float64, limit int, excludeIDs []string) ([]domain.SimilarityResult, error)
}

func (m *mockSearchUC) Search(
	ctx context.Context, ownerID, query string, threshold float64, limit int, excludeIDs []string,
) ([]domain.SimilarityResult, error) {
	return m.searchFn(ctx, ownerID, query, threshold, limit, excludeIDs)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealthUC) Check(ctx context.Context) healthuc.Report {
	return m.checkFn(ctx)
}

// --- helpers ---

func testClient(
	itemSvc itemUseCase,
	dedupSvc dedupUseCase,
	searchSvc searchUseCase,
	healthSvc healthUseCase,
) *Client {
	return &Client{
		itemSvc:   itemSvc,
		dedupSvc:  dedupSvc,
		searchSvc: searchSvc,
		healthSvc: healthSvc,
	}
}
