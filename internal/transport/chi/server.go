package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/domain"
	logpkg "github.com/kailas-cloud/bookrec/internal/logger"
	healthuc "github.com/kailas-cloud/bookrec/internal/usecase/health"
	"github.com/kailas-cloud/bookrec/internal/usecase/recommend"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the recommendation HTTP API.
type Server struct {
	recommender   Recommender
	health        HealthChecker
	maxK          int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxK <= 0 leaves k uncapped.
func NewServer(recommender Recommender, health HealthChecker, maxK int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		recommender: recommender,
		health:      health,
		maxK:        maxK,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrTitleNotFound, http.StatusNotFound, ErrorCodeBookNotFound, "Book not found"),
		invalidArgumentHandler,
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/recommend", s.Recommend)
	r.Get("/popular", s.Popular)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// Recommend handles GET /recommend?title=<t>[&k=<n>].
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := q.Get("title")
	if strings.TrimSpace(title) == "" {
		s.handleDomainError(w, r, fmt.Errorf("%w: title is required", domain.ErrInvalidArgument))
		return
	}

	k, err := s.parseK(q.Get("k"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	recs, err := s.recommender.Recommend(r.Context(), title, k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]RecommendationItem, len(recs))
	for i, rec := range recs {
		items[i] = RecommendationItem{
			Title:  rec.Title,
			Author: rec.Author,
			URL:    rec.ImageURL,
			Price:  rec.Price,
			Score:  rec.Score,
		}
	}
	writeJSON(w, http.StatusOK, RecommendResponse{Recommendations: items})
}

// parseK reads the optional k parameter. Empty means the service default.
func (s *Server) parseK(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 1 {
		return 0, fmt.Errorf("%w: k must be a positive integer", domain.ErrInvalidArgument)
	}
	if s.maxK > 0 && k > s.maxK {
		k = s.maxK
	}
	return k, nil
}

// Popular handles GET /popular.
func (s *Server) Popular(w http.ResponseWriter, r *http.Request) {
	books, err := s.recommender.Popular(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]PopularItem, len(books))
	for i, b := range books {
		items[i] = PopularItem{
			Title:      b.Title,
			Author:     b.Author,
			URL:        b.ImageURL,
			NumRatings: b.NumRatings,
			AvgRating:  b.AvgRating,
		}
	}
	writeJSON(w, http.StatusOK, PopularResponse{Books: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// encodeFailedBody is sent when a response value cannot be encoded, for example a NaN score.
var encodeFailedBody = []byte(`{"code":"internal_error","error":"internal error"}` + "\n")

// writeJSON encodes v before touching w so an encoding failure still yields a well-formed 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(encodeFailedBody)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidArgumentHandler reports malformed query parameters with their detail.
func invalidArgumentHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidArgument) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logpkg.FromContext(r.Context(), s.logger).Error("Internal error",
		zap.String("path", r.URL.Path),
		zap.Bool("consistency", errors.Is(err, domain.ErrConsistency)),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

// compile-time check that the concrete services satisfy the transport contracts.
var (
	_ Recommender   = (*recommend.Service)(nil)
	_ HealthChecker = (*healthuc.Service)(nil)
)
