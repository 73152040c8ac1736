package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"offerbook/internal/app/middleware"
)

const (
	defaultKeyPrefix = "offerbook:lock:"
	defaultTTL       = 30 * time.Second
	defaultRetry     = 25 * time.Millisecond
	maxRetryFactor   = 8
	releaseTimeout   = 2 * time.Second
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisOptions struct {
	Prefix   string
	TTL      time.Duration
	Retry    time.Duration
	Logger   *slog.Logger
	Observer Observer
}

// Redis locks keys across processes with SET NX PX. Each Acquire owns a random
// token and only deletes keys still holding it. The TTL bounds how long a
// crashed holder can block others.
type Redis struct {
	client   redis.Cmdable
	prefix   string
	ttl      time.Duration
	retry    time.Duration
	logger   *slog.Logger
	observer Observer
}

func NewRedis(client redis.Cmdable, opts RedisOptions) *Redis {
	if client == nil {
		panic("lock: redis client required")
	}
	r := &Redis{
		client:   client,
		prefix:   opts.Prefix,
		ttl:      opts.TTL,
		retry:    opts.Retry,
		logger:   opts.Logger,
		observer: opts.Observer,
	}
	if r.prefix == "" {
		r.prefix = defaultKeyPrefix
	}
	if r.ttl <= 0 {
		r.ttl = defaultTTL
	}
	if r.retry <= 0 {
		r.retry = defaultRetry
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

func (r *Redis) Acquire(ctx context.Context, keys ...string) (middleware.Release, error) {
	keys = sortedUnique(keys)
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	start := time.Now()
	token := uuid.NewString()
	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := r.acquireOne(ctx, r.prefix+key, token); err != nil {
			r.releaseAll(held, token)
			r.observe(start, err)
			return nil, err
		}
		held = append(held, r.prefix+key)
	}
	r.observe(start, nil)
	released := false
	return func() {
		if released {
			return
		}
		released = true
		r.releaseAll(held, token)
	}, nil
}

func (r *Redis) acquireOne(ctx context.Context, key, token string) error {
	wait := r.retry
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return fmt.Errorf("lock: redis setnx %s: %w", key, err)
		}
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("lock: waiting for %s: %w", key, ctx.Err())
		case <-timer.C:
		}
		if wait < r.retry*maxRetryFactor {
			wait *= 2
		}
	}
}

func (r *Redis) releaseAll(held []string, token string) {
	if len(held) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	for i := len(held) - 1; i >= 0; i-- {
		err := releaseScript.Run(ctx, r.client, []string{held[i]}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			r.logger.Warn("lock release failed", slog.String("key", held[i]), slog.String("error", err.Error()))
		}
	}
}

func (r *Redis) observe(start time.Time, err error) {
	if r.observer != nil {
		r.observer.ObserveLockWait("redis", time.Since(start), err)
	}
}

var _ middleware.Locker = (*Redis)(nil)
