package dupdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dupdex/internal/db"
	dbRedis "github.com/kailas-cloud/dupdex/internal/db/redis"
	"github.com/kailas-cloud/dupdex/internal/domain"
	"github.com/kailas-cloud/dupdex/internal/metrics"
	"github.com/kailas-cloud/dupdex/internal/repository/embcache"
	embeddingrepo "github.com/kailas-cloud/dupdex/internal/repository/embedding"
	itemrepo "github.com/kailas-cloud/dupdex/internal/repository/item"
	openaiEmb "github.com/kailas-cloud/dupdex/internal/transport/openai"
	dedupuc "github.com/kailas-cloud/dupdex/internal/usecase/dedup"
	embeddinguc "github.com/kailas-cloud/dupdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/dupdex/internal/usecase/health"
	itemuc "github.com/kailas-cloud/dupdex/internal/usecase/item"
	semsearchuc "github.com/kailas-cloud/dupdex/internal/usecase/semsearch"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "dupdex:"
)

// Internal interfaces for substitution in tests.
type itemUseCase interface {
	Create(ctx context.Context, ownerID, content string) (domain.ContentItem, error)
	Get(ctx context.Context, itemID string) (domain.ContentItem, error)
	Delete(ctx context.Context, ownerID, itemID string) error
}

type dedupUseCase interface {
	Check(ctx context.Context, ownerID, name, content string) []domain.DuplicateMatch
}

type searchUseCase interface {
	Search(ctx context.Context, ownerID, query string, threshold float64, limit int, excludeIDs []string) ([]domain.SimilarityResult, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the dupdex SDK entry point.
type Client struct {
	store     db.Store
	itemSvc   itemUseCase
	dedupSvc  dedupUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a dupdex Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("dupdex: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("dupdex: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("dupdex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	// Internal services log through zap; the SDK observes at its own
	// layer via slog, so the internals stay quiet.
	zl := zap.NewNop()

	provider, model := "custom", "custom"
	var embedder domain.Embedder = &noopEmbedder{}
	switch {
	case cfg.embedder != nil:
		embedder = &embedderAdapter{inner: cfg.embedder}
	case cfg.openai != nil:
		provider, model = "openai", cfg.openai.Model
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.openai.APIKey,
			BaseURL:    cfg.openai.BaseURL,
			Model:      cfg.openai.Model,
			Dimensions: cfg.openai.Dimensions,
			Provider:   provider,
			Logger:     zl,
		})
		embedder = embcache.New(base, store, cfg.keyPrefix, metrics.EmbeddingCacheTotal, zl)
	}

	// The instrumented decorator feeds the ContextWithUsage collector.
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, provider, model, zl)

	itemRepo := itemrepo.New(store, cfg.keyPrefix)
	embRepo := embeddingrepo.New(store, cfg.keyPrefix)

	searchSvc := semsearchuc.New(embRepo, embedder)
	dedupSvc := dedupuc.New(itemRepo, searchSvc, embedder, dedupuc.Config{
		Threshold:     cfg.dedupThreshold,
		MaxCandidates: cfg.maxCandidates,
		PoolFactor:    cfg.poolFactor,
	}, zl)

	return &Client{
		store:     store,
		itemSvc:   itemuc.New(itemRepo, embRepo, embedder, provider, model),
		dedupSvc:  dedupSvc,
		searchSvc: searchSvc,
		healthSvc: healthuc.New(store, nil),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Items returns the item service scoped to a single owner.
func (c *Client) Items(ownerID string) *ItemService {
	return &ItemService{ownerID: ownerID, svc: c.itemSvc, obs: c.obs}
}

// Duplicates returns the duplicate detection service scoped to a single owner.
func (c *Client) Duplicates(ownerID string) *DedupService {
	return &DedupService{ownerID: ownerID, svc: c.dedupSvc, obs: c.obs}
}

// Search returns the semantic search service scoped to a single owner.
func (c *Client) Search(ownerID string) *SearchService {
	return &SearchService{ownerID: ownerID, svc: c.searchSvc, obs: c.obs}
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed (used when no embedder configured).
// Item creation and search fail; duplicate checks against existing items
// still run the exact and structural stages.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"dupdex: embedder not configured (use WithEmbedder or WithOpenAI): %w",
		domain.ErrEmbeddingProviderError,
	)
}
