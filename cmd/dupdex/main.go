package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dupdex/internal/config"
	"github.com/kailas-cloud/dupdex/internal/db"
	dbRedis "github.com/kailas-cloud/dupdex/internal/db/redis"
	"github.com/kailas-cloud/dupdex/internal/domain"
	logpkg "github.com/kailas-cloud/dupdex/internal/logger"
	"github.com/kailas-cloud/dupdex/internal/metrics"
	"github.com/kailas-cloud/dupdex/internal/repository/embcache"
	embeddingrepo "github.com/kailas-cloud/dupdex/internal/repository/embedding"
	itemrepo "github.com/kailas-cloud/dupdex/internal/repository/item"
	chiTransport "github.com/kailas-cloud/dupdex/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/dupdex/internal/transport/openai"
	dedupuc "github.com/kailas-cloud/dupdex/internal/usecase/dedup"
	embeddinguc "github.com/kailas-cloud/dupdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/dupdex/internal/usecase/health"
	itemuc "github.com/kailas-cloud/dupdex/internal/usecase/item"
	semsearchuc "github.com/kailas-cloud/dupdex/internal/usecase/semsearch"
	"github.com/kailas-cloud/dupdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting dupdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterDedupMetrics()

	// Prefer the "default" vectorizer, otherwise take any configured one.
	vecCfg, ok := cfg.Embedding.Vectorizers["default"]
	if !ok {
		for _, vc := range cfg.Embedding.Vectorizers {
			vecCfg = vc
			break
		}
	}
	provCfg := cfg.Embedding.Providers[vecCfg.Provider]

	prefix := cfg.Storage.KeyPrefix
	embedder := buildEmbedder(provCfg, vecCfg, store, prefix, logger)
	logger.Info("Embedder created",
		zap.String("provider", vecCfg.Provider),
		zap.String("model", vecCfg.Model),
		zap.Int("dimensions", vecCfg.Dimensions),
	)

	itemRepo := itemrepo.New(store, prefix)
	embRepo := embeddingrepo.New(store, prefix)

	itemSvc := itemuc.New(itemRepo, embRepo, embedder, vecCfg.Provider, vecCfg.Model)
	searchSvc := semsearchuc.New(embRepo, embedder)
	dedupSvc := dedupuc.New(itemRepo, searchSvc, embedder, dedupuc.Config{
		Threshold:         cfg.Dedup.Threshold,
		MaxCandidates:     cfg.Dedup.MaxCandidates,
		PoolFactor:        cfg.Dedup.PoolFactor,
		DisableExact:      cfg.Dedup.DisableExact,
		DisableStructural: cfg.Dedup.DisableStructural,
		DisableSemantic:   cfg.Dedup.DisableSemantic,
	}, logger)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder))

	server := chiTransport.NewServer(itemSvc, dedupSvc, searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(
	provCfg config.ProviderConfig,
	vecCfg config.VectorizerConfig,
	store db.Store,
	prefix string,
	logger *zap.Logger,
) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:        provCfg.APIKey,
		BaseURL:       provCfg.BaseURL,
		Model:         vecCfg.Model,
		Dimensions:    vecCfg.Dimensions,
		MaxTokens:     vecCfg.MaxTokens,
		CharsPerToken: vecCfg.CharsPerToken,
		Provider:      vecCfg.Provider,
		Logger:        logger,
	})

	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, prefix, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(embedder, vecCfg.Provider, vecCfg.Model, logger)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.ProviderChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
