package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/adapter/http/handler"
	"github.com/iho/bankledger/internal/adapter/http/middleware"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	AccountHandler *handler.AccountHandler
	HealthHandler  *handler.HealthHandler
	TokenVerifier  middleware.TokenVerifier
	Logger         zerolog.Logger

	// Optional
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := func(next http.Handler) http.Handler { return next }
	if cfg.IdempotencyStore != nil {
		opts := []middleware.IdempotencyOption{middleware.WithTTL(cfg.IdempotencyTTL)}
		if cfg.Metrics != nil {
			opts = append(opts, middleware.WithReplayCounter(cfg.Metrics.IdempotentReplays))
		}
		idempotent = middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, opts...).Wrap
	}

	// Authentication
	r.With(idempotent).Post("/register", cfg.AuthHandler.Register)
	r.Post("/login", cfg.AuthHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))

		r.Get("/protected", cfg.AuthHandler.Protected)

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Use(idempotent)

			r.Post("/create", cfg.AccountHandler.Create)
			r.Get("/my-account", cfg.AccountHandler.Get)
			r.Post("/deposit", cfg.AccountHandler.Deposit)
			r.Post("/withdraw", cfg.AccountHandler.Withdraw)
			r.Post("/transfer", cfg.AccountHandler.Transfer)
			r.Post("/close", cfg.AccountHandler.Close)
		})
	})

	return r
}
