package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dupdex/internal/domain"
	dedupuc "github.com/kailas-cloud/dupdex/internal/usecase/dedup"
	healthuc "github.com/kailas-cloud/dupdex/internal/usecase/health"
	itemuc "github.com/kailas-cloud/dupdex/internal/usecase/item"
	semsearchuc "github.com/kailas-cloud/dupdex/internal/usecase/semsearch"
)

// fakeItemStore backs both the item service and the cascade's item reader.
type fakeItemStore struct {
	items map[string]domain.ContentItem
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: map[string]domain.ContentItem{}}
}

func (f *fakeItemStore) Put(_ context.Context, item domain.ContentItem) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeItemStore) Get(_ context.Context, itemID string) (domain.ContentItem, error) {
	item, ok := f.items[itemID]
	if !ok {
		return domain.ContentItem{}, domain.ErrItemNotFound
	}
	return item, nil
}

func (f *fakeItemStore) Delete(_ context.Context, itemID string) error {
	delete(f.items, itemID)
	return nil
}

func (f *fakeItemStore) FindExactMatches(_ context.Context, ownerID, normalized string) ([]domain.ItemRef, error) {
	var refs []domain.ItemRef
	for _, item := range f.items {
		if item.OwnerID == ownerID && domain.NormalizeContent(item.Content) == normalized {
			refs = append(refs, item.Ref())
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	return refs, nil
}

func (f *fakeItemStore) ListOwnerItems(_ context.Context, ownerID string, limit int) ([]domain.ContentItem, error) {
	var out []domain.ContentItem
	for _, item := range f.items {
		if item.OwnerID == ownerID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeVectorStore backs the item service and the semantic ranker.
type fakeVectorStore struct {
	vectors map[string]domain.EmbeddingVector // itemID -> vector
	owners  map[string]string                 // itemID -> ownerID
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{
		vectors: map[string]domain.EmbeddingVector{},
		owners:  map[string]string{},
	}
}

func (f *fakeVectorStore) Upsert(_ context.Context, ownerID string, vec domain.EmbeddingVector) error {
	f.vectors[vec.ItemID] = vec
	f.owners[vec.ItemID] = ownerID
	return nil
}

func (f *fakeVectorStore) Delete(_ context.Context, _, itemID string) error {
	delete(f.vectors, itemID)
	delete(f.owners, itemID)
	return nil
}

func (f *fakeVectorStore) QueryByOwner(_ context.Context, ownerID string, excludeIDs []string) ([]domain.EmbeddingVector, error) {
	excl := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excl[id] = struct{}{}
	}
	var out []domain.EmbeddingVector
	for id, vec := range f.vectors {
		if f.owners[id] != ownerID {
			continue
		}
		if _, skip := excl[id]; skip {
			continue
		}
		out = append(out, vec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

// fakeEmbedder maps known texts to fixed vectors. Unknown texts get a
// default orthogonal vector.
type fakeEmbedder struct {
	byText map[string][]float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	vec, ok := f.byText[text]
	if !ok {
		vec = []float32{0, 0, 1}
	}
	domain.UsageFromContext(ctx).AddTokens(len(text) / 4)
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: len(text) / 4}, nil
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

type testEnv struct {
	items    *fakeItemStore
	vectors  *fakeVectorStore
	embedder *fakeEmbedder
	pinger   *fakePinger
	router   chirouter.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		items:    newFakeItemStore(),
		vectors:  newFakeVectorStore(),
		embedder: &fakeEmbedder{byText: map[string][]float32{}},
		pinger:   &fakePinger{},
	}

	itemSvc := itemuc.New(env.items, env.vectors, env.embedder, "openai", "text-embedding-3-small")
	searchSvc := semsearchuc.New(env.vectors, env.embedder)
	dedupSvc := dedupuc.New(env.items, searchSvc, env.embedder, dedupuc.Config{}, zap.NewNop())
	healthSvc := healthuc.New(env.pinger, nil)

	srv := NewServer(itemSvc, dedupSvc, searchSvc, healthSvc, zap.NewNop())
	r := chirouter.NewRouter()
	srv.Routes(r)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
