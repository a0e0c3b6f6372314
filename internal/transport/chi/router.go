package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/metrics"
)

// RouterConfig holds the middleware settings of the HTTP API.
type RouterConfig struct {
	APIKeys           []string
	AllowedOrigins    []string
	CORSMaxAge        time.Duration
	RequestsPerMinute int
}

// NewRouter assembles the middleware chain and mounts the server routes.
func NewRouter(s *Server, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(CORS(cfg.AllowedOrigins, cfg.CORSMaxAge))
	r.Use(RateLimitByIP(cfg.RequestsPerMinute))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware())
	s.Register(r)
	return r
}
