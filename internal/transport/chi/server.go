// Package chi exposes the duplicate detection engine over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dupdex/internal/domain"
	dedupuc "github.com/kailas-cloud/dupdex/internal/usecase/dedup"
	healthuc "github.com/kailas-cloud/dupdex/internal/usecase/health"
	itemuc "github.com/kailas-cloud/dupdex/internal/usecase/item"
	semsearchuc "github.com/kailas-cloud/dupdex/internal/usecase/semsearch"
)

// Search request bounds.
const (
	defaultSearchLimit     = 10
	maxSearchLimit         = 100
	defaultSearchThreshold = 0.8
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires usecase services into HTTP handlers.
type Server struct {
	items         *itemuc.Service
	dedup         *dedupuc.Service
	search        *semsearchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	items *itemuc.Service,
	dedup *dedupuc.Service,
	search *semsearchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		items:  items,
		dedup:  dedup,
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrItemNotFound, http.StatusNotFound, CodeItemNotFound),
		sentinelHandler(domain.ErrEmbeddingNotFound, http.StatusNotFound, CodeEmbeddingNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeItemNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusBadRequest, CodeDimensionMismatch),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderErr),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, CodeStoreUnavailable),
	}
	return s
}

// Routes mounts all endpoints on the given router.
func (s *Server) Routes(r chirouter.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1/owners/{ownerID}", func(r chirouter.Router) {
		r.Post("/items", s.CreateItem)
		r.Get("/items/{itemID}", s.GetItem)
		r.Delete("/items/{itemID}", s.DeleteItem)
		r.Post("/duplicates/check", s.CheckDuplicates)
		r.Post("/search", s.Search)
	})
}

// CreateItem handles POST /v1/owners/{ownerID}/items.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
	ownerID := chirouter.URLParam(r, "ownerID")

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())

	item, err := s.items.Create(ctx, ownerID, req.Content)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusCreated, itemToResponse(item))
}

// GetItem handles GET /v1/owners/{ownerID}/items/{itemID}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	ownerID := chirouter.URLParam(r, "ownerID")
	itemID := chirouter.URLParam(r, "itemID")

	item, err := s.items.Get(r.Context(), itemID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if item.OwnerID != ownerID {
		// Items are not visible across owner scopes.
		writeError(w, http.StatusNotFound, CodeItemNotFound, domain.ErrItemNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, itemToResponse(item))
}

// DeleteItem handles DELETE /v1/owners/{ownerID}/items/{itemID}.
// Deleting an absent item succeeds.
func (s *Server) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ownerID := chirouter.URLParam(r, "ownerID")
	itemID := chirouter.URLParam(r, "itemID")

	if err := s.items.Delete(r.Context(), ownerID, itemID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CheckDuplicates handles POST /v1/owners/{ownerID}/duplicates/check.
func (s *Server) CheckDuplicates(w http.ResponseWriter, r *http.Request) {
	ownerID := chirouter.URLParam(r, "ownerID")

	var req CheckDuplicatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "content is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())

	matches := s.dedup.Check(ctx, ownerID, req.Name, req.Content)

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, CheckDuplicatesResponse{
		Matches: matchesToResponse(matches),
		Verdict: dedupuc.Verdict(matches),
	})
}

// Search handles POST /v1/owners/{ownerID}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	ownerID := chirouter.URLParam(r, "ownerID")

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}

	threshold := defaultSearchThreshold
	if req.Threshold != nil {
		if *req.Threshold < -1 || *req.Threshold > 1 {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "threshold must be between -1 and 1")
			return
		}
		threshold = *req.Threshold
	}

	limit := defaultSearchLimit
	if req.Limit != nil {
		if *req.Limit <= 0 || *req.Limit > maxSearchLimit {
			writeError(w, http.StatusBadRequest, CodeValidationFailed,
				"limit must be between 1 and "+strconv.Itoa(maxSearchLimit))
			return
		}
		limit = *req.Limit
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())

	results, err := s.search.Search(ctx, ownerID, req.Query, threshold, limit, nil)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{Results: resultsToResponse(results)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrItemNotFound,
		domain.ErrEmbeddingNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidRequest,
		domain.ErrDimensionMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
