package main

import (
	"context"
	"log/slog"
	"time"
)

const janitorInterval = time.Hour

// startJanitor purges expired idempotency records on a fixed interval.
func startJanitor(ctx context.Context, purge func(context.Context, time.Time) (int64, error), logger *slog.Logger) {
	if purge == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := purge(ctx, now.UTC())
				if err != nil {
					logger.Warn("idempotency purge failed", "error", err)
					continue
				}
				if n > 0 {
					logger.Debug("idempotency records purged", "count", n)
				}
			}
		}
	}()
}
