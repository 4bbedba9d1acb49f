package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"admintrail/pkg/platform/middleware/metadata"
	"admintrail/pkg/platform/middleware/request"
	"admintrail/pkg/platform/middleware/requesttime"
)

const maxBodyBytes = 1 << 20

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
	Metadata       *metadata.Middleware
	Latency        *request.Metrics
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Routes   []Registrar
}

// NewRouter wires the middleware stack and mounts every route group.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Metadata == nil {
		cfg.Metadata = metadata.NewMiddleware(metadata.Config{})
	}

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(cfg.Metadata.Handler)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.LatencyMiddleware(cfg.Latency))
	if cfg.RequestTimeout > 0 {
		r.Use(request.Timeout(cfg.RequestTimeout))
	}
	r.Use(request.BodyLimit(maxBodyBytes))
	r.Use(request.ContentTypeJSON)

	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	for _, route := range cfg.Routes {
		route.Register(r)
	}

	return r
}
