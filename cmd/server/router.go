package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"party/internal/party/handler"
	"party/internal/platform/config"
	httpmetrics "party/internal/platform/metrics"
	"party/internal/platform/middleware"
	"party/internal/platform/ratelimit"
	"party/pkg/platform/httputil"
)

const healthTimeout = 2 * time.Second

// newRouter assembles the middleware chain and mounts the party routes,
// health and metrics.
func newRouter(cfg config.Server, log *slog.Logger, reg *prometheus.Registry, d *deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recover(log, cfg.ErrorMaxLength))
	r.Use(httpmetrics.New(reg).Middleware)

	r.Get("/healthz", healthHandler(d.store, log))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	limiter := ratelimit.NewMiddleware(d.limiter, log,
		ratelimit.WithDisabled(cfg.RateLimit.PerMinute <= 0),
		ratelimit.WithErrorMaxLength(cfg.ErrorMaxLength),
	)
	parties := handler.New(d.service, log, cfg.ErrorMaxLength)

	r.Group(func(r chi.Router) {
		if d.verifier != nil {
			r.Use(middleware.RequireAuth(d.verifier, log, cfg.ErrorMaxLength))
		}
		parties.Register(r, limiter.RateLimit)
	})
	return r
}

func healthHandler(store pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.WarnContext(ctx, "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
