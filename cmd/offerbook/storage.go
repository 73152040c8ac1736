package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	appinbox "offerbook/internal/app/inbox"
	"offerbook/internal/app/middleware"
	appoutbox "offerbook/internal/app/outbox"
	"offerbook/internal/app/uow"
	"offerbook/internal/infra/config"
	mongostore "offerbook/internal/infra/db/mongo"
	"offerbook/internal/infra/db/postgres"
	infrainbox "offerbook/internal/infra/inbox"
	"offerbook/internal/infra/lock"
	"offerbook/internal/infra/obs"
	infraoutbox "offerbook/internal/infra/outbox"
	"offerbook/internal/infra/storage/memory"
)

const catalogConsumer = "offerbook-catalog"

type storage struct {
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	relay       appoutbox.RelayStore
	inbox       appinbox.Store
	idempotency middleware.IdempotencyStore
	// purge removes expired idempotency records; nil when the store expires them itself.
	purge       func(context.Context, time.Time) (int64, error)
	// ready is nil for the in-memory store.
	ready       func(context.Context) error
	close       func()
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		return openMongo(ctx, cfg)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	}
	logger.Warn("using in-memory storage; data is lost on restart")
	box := memory.NewOutbox()
	return storage{
		factory:     memory.NewFactory(),
		outbox:      box,
		relay:       box,
		inbox:       memory.NewInbox(),
		idempotency: memory.NewIdempotencyStore(),
		close:       func() {},
	}, nil
}

func openMongo(ctx context.Context, cfg config.Config) (storage, error) {
	client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, fmt.Errorf("mongo connect: %w", err)
	}
	closeClient := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Close(shutdownCtx)
	}
	if err := client.Ping(ctx); err != nil {
		closeClient()
		return storage{}, fmt.Errorf("mongo ping: %w", err)
	}
	factory, err := mongostore.NewFactory(ctx, client.DB)
	if err != nil {
		closeClient()
		return storage{}, fmt.Errorf("mongo indexes: %w", err)
	}
	box, err := infraoutbox.NewMongoStore(ctx, client.DB)
	if err != nil {
		closeClient()
		return storage{}, fmt.Errorf("mongo outbox: %w", err)
	}
	idem, err := mongostore.NewIdempotencyStore(ctx, client.DB)
	if err != nil {
		closeClient()
		return storage{}, fmt.Errorf("mongo idempotency: %w", err)
	}
	inbox, err := infrainbox.NewMongoStore(ctx, client.DB, catalogConsumer)
	if err != nil {
		closeClient()
		return storage{}, fmt.Errorf("mongo inbox: %w", err)
	}
	return storage{
		factory:     factory,
		outbox:      box,
		relay:       box,
		inbox:       inbox,
		idempotency: idem,
		ready:       client.Ping,
		close:       closeClient,
	}, nil
}

func openPostgres(ctx context.Context, cfg config.Config) (storage, error) {
	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return storage{}, fmt.Errorf("postgres connect: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return storage{}, fmt.Errorf("postgres migrate: %w", err)
	}
	box := infraoutbox.NewPostgresStore(pool)
	idem := postgres.NewIdempotencyStore(pool)
	return storage{
		factory:     postgres.NewFactory(pool),
		outbox:      box,
		relay:       box,
		inbox:       infrainbox.NewPostgresStore(pool, catalogConsumer),
		idempotency: idem,
		purge:       idem.PurgeExpired,
		ready:       pool.Ping,
		close:       pool.Close,
	}, nil
}

type lockBackend struct {
	locker middleware.Locker
	// ready is nil for the in-process locker.
	ready  func(context.Context) error
	close  func()
}

func openLocker(ctx context.Context, cfg config.Config, metrics *obs.Metrics, logger *slog.Logger) (lockBackend, error) {
	if cfg.LockDriver != config.DriverRedis {
		return lockBackend{locker: lock.NewKeyed(metrics), close: func() {}}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return lockBackend{}, fmt.Errorf("redis ping: %w", err)
	}
	locker := lock.NewRedis(client, lock.RedisOptions{
		TTL:      cfg.LockTTL,
		Retry:    cfg.LockRetry,
		Logger:   logger,
		Observer: metrics,
	})
	return lockBackend{
		locker: locker,
		ready:  func(ctx context.Context) error { return client.Ping(ctx).Err() },
		close:  func() { _ = client.Close() },
	}, nil
}
