package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appoutbox "offerbook/internal/app/outbox"
	"offerbook/internal/infra/db/postgres"
)

// PostgresStore keeps outbox records in app_outbox. Add joins the unit of
// work transaction carried by the context.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	headers, err := json.Marshal(record.Headers)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = postgres.Conn(ctx, s.pool).Exec(ctx, `
		INSERT INTO app_outbox (id, name, payload, occurred_at, aggregate, headers, state, next_attempt_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.ID, record.Name, record.Payload, record.OccurredAt.UTC(), record.Aggregate, headers, stateNew, now, now)
	return err
}

func (s *PostgresStore) Flush(context.Context) error {
	return nil
}

// Claim locks the oldest due record, skipping rows other workers hold.
func (s *PostgresStore) Claim(ctx context.Context, workerID string) (*appoutbox.Pending, error) {
	now := time.Now().UTC()
	var (
		p       appoutbox.Pending
		headers []byte
	)
	err := s.pool.QueryRow(ctx, `
		UPDATE app_outbox SET state = $1, claimed_by = $2, claimed_at = $3
		WHERE id = (
			SELECT id FROM app_outbox
			WHERE state IN ($4, $5) AND next_attempt_at <= $3
			ORDER BY next_attempt_at, created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, name, payload, occurred_at, aggregate, headers, attempts`,
		stateClaimed, workerID, now, stateNew, stateFailed).
		Scan(&p.ID, &p.Name, &p.Payload, &p.OccurredAt, &p.Aggregate, &headers, &p.Attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(headers) > 0 {
		if err := json.Unmarshal(headers, &p.Headers); err != nil {
			return nil, err
		}
	}
	p.OccurredAt = p.OccurredAt.UTC()
	return &p, nil
}

func (s *PostgresStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE app_outbox SET state = $2, sent_at = $3 WHERE id = $1`, id, stateSent, time.Now().UTC())
	return err
}

func (s *PostgresStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE app_outbox SET state = $2, next_attempt_at = $3, last_error = $4, attempts = attempts + 1
		WHERE id = $1`, id, stateFailed, next.UTC(), errMsg)
	return err
}

var (
	_ appoutbox.Outbox     = (*PostgresStore)(nil)
	_ appoutbox.RelayStore = (*PostgresStore)(nil)
)
