package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"offerbook/internal/app/middleware"
)

// IdempotencyStore keeps replayable command results in app_idempotency.
type IdempotencyStore struct {
	pool *pgxpool.Pool
}

func NewIdempotencyStore(pool *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{pool: pool}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var (
		rec     middleware.IdempotencyRecord
		expires *time.Time
	)
	err := Conn(ctx, s.pool).QueryRow(ctx,
		`SELECT key, payload, occurred_at, expires_at FROM app_idempotency WHERE key = $1`, key).
		Scan(&rec.Key, &rec.Payload, &rec.OccurredAt, &expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	rec.OccurredAt = rec.OccurredAt.UTC()
	if expires != nil {
		rec.ExpiresAt = expires.UTC()
	}
	return rec, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	var expires *time.Time
	if !rec.ExpiresAt.IsZero() {
		exp := rec.ExpiresAt.UTC()
		expires = &exp
	}
	_, err := Conn(ctx, s.pool).Exec(ctx, `
		INSERT INTO app_idempotency (key, payload, occurred_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			payload = EXCLUDED.payload, occurred_at = EXCLUDED.occurred_at, expires_at = EXCLUDED.expires_at`,
		rec.Key, rec.Payload, rec.OccurredAt.UTC(), expires)
	return err
}

// PurgeExpired deletes records whose expiry has passed.
func (s *IdempotencyStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM app_idempotency WHERE expires_at IS NOT NULL AND expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
