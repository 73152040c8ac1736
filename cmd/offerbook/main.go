package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"offerbook/internal/app/wiring"
	"offerbook/internal/infra/config"
	"offerbook/internal/infra/fixtures"
	ginserver "offerbook/internal/infra/http/gin"
	"offerbook/internal/infra/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger(getenv("APP_ENV", "dev")).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	metrics := obs.NewMetrics()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer store.close()

	locks, err := openLocker(ctx, cfg, metrics, logger)
	if err != nil {
		logger.Error("locker init failed", "driver", cfg.LockDriver, "error", err)
		os.Exit(1)
	}
	defer locks.close()

	buses := wiring.Build(wiring.Deps{
		UoW:            store.factory,
		Outbox:         store.outbox,
		Idempotency:    store.idempotency,
		IdempotencyTTL: cfg.IdempotencyTTL,
		Locker:         locks.locker,
		Logger:         logger,
		Checks:         metrics,
		Ranking:        metrics,
		Source:         "app://offerbook",
	})

	fixturesPath := cfg.FixturesPath
	if fixturesPath == "" {
		fixturesPath = fixtures.DefaultPath()
	}
	if _, err := fixtures.Load(ctx, store.factory, fixturesPath, logger); err != nil {
		logger.Warn("fixtures load failed", "error", err, "path", fixturesPath)
	}

	relayDone := startRelay(ctx, cfg, store.relay, metrics, logger)
	startJanitor(ctx, store.purge, logger)
	consumerDone := startCatalogConsumer(ctx, cfg, buses.Commands, store.inbox, logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger, Metrics: metrics}, obs.HealthHandlers{
		Checks: []obs.ReadyCheck{
			{Name: "storage", Ping: store.ready},
			{Name: "locks", Ping: locks.ready},
		},
	}, ginserver.Handlers{
		Reservation: ginserver.ReservationHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Blackout:    ginserver.BlackoutHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Offer:       ginserver.OfferHandler{Queries: buses.Queries, Logger: logger},
		Place:       ginserver.PlaceHandler{Queries: buses.Queries, Logger: logger},
		Metrics:     metrics.Handler(),
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver, "lock", cfg.LockDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		stop()
		<-relayDone
		<-consumerDone
		os.Exit(1)
	}
	<-relayDone
	<-consumerDone
	logger.Info("HTTP server stopped")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
