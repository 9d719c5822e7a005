package semsearch

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/dupdex/internal/domain"
)

type mockVectorReader struct {
	vectors []domain.EmbeddingVector
	err     error
	gotExcl []string
}

func (m *mockVectorReader) QueryByOwner(_ context.Context, _ string, excludeIDs []string) ([]domain.EmbeddingVector, error) {
	m.gotExcl = excludeIDs
	if m.err != nil {
		return nil, m.err
	}
	// Honor the exclusion set like the real repository does.
	excl := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excl[id] = struct{}{}
	}
	var out []domain.EmbeddingVector
	for _, v := range m.vectors {
		if _, skip := excl[v.ItemID]; skip {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func vec(id string, v ...float32) domain.EmbeddingVector {
	return domain.EmbeddingVector{ItemID: id, Vector: v}
}

func TestRankOrdersBySimilarity(t *testing.T) {
	reader := &mockVectorReader{vectors: []domain.EmbeddingVector{
		vec("item-far", -1, 0),
		vec("item-near", 1, 0),
		vec("item-mid", 1, 1),
	}}
	svc := New(reader, &mockEmbedder{})

	results, err := svc.Rank(context.Background(), "owner-a", []float32{1, 0}, 0, 0, nil)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ItemID != "item-near" || results[1].ItemID != "item-mid" || results[2].ItemID != "item-far" {
		t.Errorf("unexpected order: %+v", results)
	}
	if results[0].Similarity != 1.0 {
		t.Errorf("expected similarity 1.0 for identical vector, got %v", results[0].Similarity)
	}
	if results[0].Distance != 0 {
		t.Errorf("expected distance 0 for identical vector, got %v", results[0].Distance)
	}
}

func TestRankThreshold(t *testing.T) {
	reader := &mockVectorReader{vectors: []domain.EmbeddingVector{
		vec("item-near", 1, 0),
		vec("item-orthogonal", 0, 1),
	}}
	svc := New(reader, &mockEmbedder{})

	results, err := svc.Rank(context.Background(), "owner-a", []float32{1, 0}, 0.5, 0, nil)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(results) != 1 || results[0].ItemID != "item-near" {
		t.Errorf("expected only item-near above threshold, got %+v", results)
	}
}

func TestRankTieBreakByItemID(t *testing.T) {
	reader := &mockVectorReader{vectors: []domain.EmbeddingVector{
		vec("item-b", 1, 0),
		vec("item-a", 1, 0),
	}}
	svc := New(reader, &mockEmbedder{})

	results, err := svc.Rank(context.Background(), "owner-a", []float32{1, 0}, 0, 0, nil)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if results[0].ItemID != "item-a" || results[1].ItemID != "item-b" {
		t.Errorf("equal similarity must order by item id: %+v", results)
	}
}

func TestRankLimit(t *testing.T) {
	reader := &mockVectorReader{vectors: []domain.EmbeddingVector{
		vec("item-1", 1, 0),
		vec("item-2", 1, 0.1),
		vec("item-3", 1, 0.2),
	}}
	svc := New(reader, &mockEmbedder{})

	results, err := svc.Rank(context.Background(), "owner-a", []float32{1, 0}, 0, 2, nil)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results with limit, got %d", len(results))
	}
}

func TestRankExcludesIDs(t *testing.T) {
	reader := &mockVectorReader{vectors: []domain.EmbeddingVector{
		vec("item-1", 1, 0),
		vec("item-2", 1, 0),
	}}
	svc := New(reader, &mockEmbedder{})

	results, err := svc.Rank(context.Background(), "owner-a", []float32{1, 0}, 0, 0, []string{"item-1"})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(results) != 1 || results[0].ItemID != "item-2" {
		t.Errorf("expected item-1 excluded, got %+v", results)
	}
	if len(reader.gotExcl) != 1 || reader.gotExcl[0] != "item-1" {
		t.Errorf("exclusion set not passed to reader: %v", reader.gotExcl)
	}
}

func TestRankDimensionMismatch(t *testing.T) {
	reader := &mockVectorReader{vectors: []domain.EmbeddingVector{
		vec("item-1", 1, 0, 0),
	}}
	svc := New(reader, &mockEmbedder{})

	_, err := svc.Rank(context.Background(), "owner-a", []float32{1, 0}, 0, 0, nil)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSearchEmbedsQuery(t *testing.T) {
	reader := &mockVectorReader{vectors: []domain.EmbeddingVector{
		vec("item-1", 1, 0),
	}}
	embed := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 0}, TotalTokens: 4}}
	svc := New(reader, embed)

	results, err := svc.Search(context.Background(), "owner-a", "query text", 0.5, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ItemID != "item-1" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestSearchEmbedError(t *testing.T) {
	embed := &mockEmbedder{err: errors.New("provider down")}
	svc := New(&mockVectorReader{}, embed)

	_, err := svc.Search(context.Background(), "owner-a", "query text", 0.5, 10, nil)
	if err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

func TestRankReaderError(t *testing.T) {
	reader := &mockVectorReader{err: domain.ErrStoreUnavailable}
	svc := New(reader, &mockEmbedder{})

	_, err := svc.Rank(context.Background(), "owner-a", []float32{1, 0}, 0, 0, nil)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
