package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"digipin/pkg/platform/httputil"
	"digipin/pkg/platform/middleware/control"
	"digipin/pkg/platform/middleware/request"
	"digipin/pkg/platform/middleware/requesttime"
)

// RouterConfig assembles the control API.
type RouterConfig struct {
	Handler *Handler
	Logger  *slog.Logger
	// Token guards every route except /healthz and /metrics. Empty disables it.
	Token   string
	Metrics http.Handler
	Timeout time.Duration
}

// NewRouter wires the middleware chain, health, metrics and control routes.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	r := chi.NewRouter()
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(control.RequireToken(cfg.Token, cfg.Logger))
		r.Use(timeout(cfg.Timeout))
		cfg.Handler.Register(r)
	})
	return r
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"unavailable","error_description":"request timed out"}`)
	}
}
