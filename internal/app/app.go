package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apicatalog "github.com/aerostay/bookflow/internal/catalog"
	"github.com/aerostay/bookflow/internal/config"
	"github.com/aerostay/bookflow/internal/postgres"
	redisx "github.com/aerostay/bookflow/internal/redis"
	postgresrepo "github.com/aerostay/bookflow/internal/repository/postgres"
	redisrepo "github.com/aerostay/bookflow/internal/repository/redis"
	"github.com/aerostay/bookflow/internal/service"
	"github.com/aerostay/bookflow/internal/service/session"
	httpgin "github.com/aerostay/bookflow/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pubsub     *redisx.CheckoutPubSub
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	sessions := redisrepo.NewSessionStore(rdb, cfg.Booking.SessionTTL)
	pubsub := redisx.NewCheckoutPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "rl", 10, 1*time.Minute)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Outbound availability API client
	client := apicatalog.New(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	// Initialize services
	services := service.NewServices(store, cache, sessions, pubsub, limiter, client, service.Config{
		Session: session.Config{TaxRate: cfg.Booking.TaxRate},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, idempotencyStore, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		pubsub: pubsub,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Log checkout events as they are published. Downstream consumers
	// (payment workers) subscribe to the same channel independently.
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, sessionID string, totalCents int64) {
			a.logger.Info("checkout started",
				"session_id", sessionID,
				"total_cents", totalCents,
			)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("checkout subscriber: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
