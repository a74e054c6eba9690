package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/staybook/staybook-backend/api/routes"
	"github.com/staybook/staybook-backend/internal/bookings"
	"github.com/staybook/staybook-backend/internal/cart"
	"github.com/staybook/staybook-backend/internal/checkout"
	"github.com/staybook/staybook-backend/internal/rooms"
	"github.com/staybook/staybook-backend/pkg/config"
	"github.com/staybook/staybook-backend/pkg/db"
	"github.com/staybook/staybook-backend/pkg/instance"
	"github.com/staybook/staybook-backend/pkg/logger"
	"github.com/staybook/staybook-backend/pkg/metrics"
	"github.com/staybook/staybook-backend/pkg/migrate"
	"github.com/staybook/staybook-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	writer, err := cart.NewWriter(cart.NewRedisSnapshots(redisClient), logg.Component("cart_writer"), cart.WriterOptions{
		Retries:     cfg.Cart.WriteRetries,
		Backoff:     cfg.Cart.WriteBackoff,
		BacklogWarn: cfg.Cart.BacklogWarn,
		Metrics:     checkoutMetrics,
	})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := writer.Close(closeCtx); err != nil {
			logg.Error(context.Background(), "cart writer did not drain", err)
		}
	}()

	carts, err := cart.NewManager(cart.NewRedisSnapshots(redisClient), writer, func(userID string) string {
		return redisClient.CartKey(cfg.Cart.SnapshotKey, userID)
	}, logg, cart.WithIdleTTL(cfg.Cart.IdleTTL))
	if err != nil {
		return err
	}

	roomRepo := rooms.NewRepository(dbClient.DB())
	bookingRepo := bookings.NewRepository(dbClient.DB())

	cartService, err := cart.NewService(carts, roomRepo)
	if err != nil {
		return err
	}

	taxRate, err := cfg.Checkout.Rate()
	if err != nil {
		return err
	}
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Carts:    carts,
		Bookings: bookingRepo,
		Guard:    checkout.NewRedisGuard(redisClient, cfg.Checkout.GuardTTL),
		Metrics:  checkoutMetrics,
		Logger:   logg.Component("checkout"),
		TaxRate:  taxRate,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			roomRepo,
			bookingRepo,
			cartService,
			checkoutService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
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

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Pending cart snapshots are drained only after in-flight requests finish.
	return multierr.Combine(
		server.Shutdown(shutdownCtx),
		writer.Close(shutdownCtx),
	)
}
