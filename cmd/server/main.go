package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/bankledger/internal/adapter/http"
	"github.com/iho/bankledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/bankledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bankledger/internal/adapter/repository/redis"
	"github.com/iho/bankledger/internal/adapter/repository/snapshot"
	"github.com/iho/bankledger/internal/infrastructure/auth"
	"github.com/iho/bankledger/internal/infrastructure/config"
	"github.com/iho/bankledger/internal/infrastructure/idgen"
	"github.com/iho/bankledger/internal/infrastructure/logger"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/infrastructure/postgres"
	"github.com/iho/bankledger/internal/infrastructure/redis"
	"github.com/iho/bankledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	app, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Str("credentials", cfg.CredentialStore).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

type app struct {
	handler http.Handler
	closers []func()
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires stores, use cases and the router from cfg.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var checks []handler.HealthCheck

	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		if cfg.MigrateOnStart {
			if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
				return nil, err
			}
		}

		pool, err = postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		log.Info().Msg("connected to postgres")
	}

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		log.Info().Msg("connected to redis")
	}

	// Ledger
	var store usecase.LedgerStore
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pgStore := postgresRepo.NewLedgerStore(pool, postgresRepo.NewRetrier(log))
		checks = append(checks, handler.HealthCheck{Name: "postgres", Check: pgStore.Ping})
		store = pgStore
	default:
		fileStore, err := snapshot.NewLedgerStore(filepath.Join(cfg.DataDir, snapshot.AccountsFile))
		if err != nil {
			return nil, err
		}
		checks = append(checks, handler.HealthCheck{Name: "ledger", Check: fileStore.Ping})
		store = fileStore
	}

	// Credentials
	var credentials usecase.CredentialRepository
	switch cfg.CredentialStore {
	case config.DriverPostgres:
		credentials = postgresRepo.NewCredentialRepository(pool)
		if cfg.StoreDriver != config.DriverPostgres {
			checks = append(checks, handler.HealthCheck{Name: "postgres", Check: pool.Ping})
		}
	case config.DriverRedis:
		redisCredentials := redisRepo.NewCredentialStore(redisClient)
		checks = append(checks, handler.HealthCheck{Name: "credentials", Check: redisCredentials.Ping})
		credentials = redisCredentials
	default:
		credentials, err = snapshot.NewCredentialStore(filepath.Join(cfg.DataDir, snapshot.UsersFile))
		if err != nil {
			return nil, err
		}
	}

	tokens, err := auth.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	numbers, err := idgen.NewAccountNumberGenerator(cfg.AccountNumberLength)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	authUC := usecase.NewAuthUseCase(credentials, auth.NewBcryptHasher(cfg.BcryptCost), tokens, usecase.WithRecorder(m))
	accountUC := usecase.NewAccountUseCase(store, numbers, usecase.WithRecorder(m))

	var idempotency usecase.IdempotencyStore
	if redisClient != nil {
		idem := redisRepo.NewIdempotencyStore(redisClient)
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: idem.Ping})
		idempotency = idem
	} else {
		log.Warn().Msg("REDIS_URL not set, idempotency keys are kept in process memory")
		idempotency = snapshot.NewIdempotencyStore()
	}

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:      handler.NewAuthHandler(authUC),
		AccountHandler:   handler.NewAccountHandler(accountUC),
		HealthHandler:    handler.NewHealthHandler(checks...),
		TokenVerifier:    authUC,
		Logger:           log,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Metrics:          m,
		Gatherer:         registry,
		IdempotencyStore: idempotency,
	})
	return a, nil
}
