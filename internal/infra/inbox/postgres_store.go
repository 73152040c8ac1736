package inbox

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	appinbox "offerbook/internal/app/inbox"
	"offerbook/internal/infra/db/postgres"
)

// PostgresStore records consumed event ids in app_inbox.
type PostgresStore struct {
	pool     *pgxpool.Pool
	consumer string
}

func NewPostgresStore(pool *pgxpool.Pool, consumer string) *PostgresStore {
	return &PostgresStore{pool: pool, consumer: consumer}
}

func (s *PostgresStore) Seen(ctx context.Context, eventID string) (bool, error) {
	tag, err := postgres.Conn(ctx, s.pool).Exec(ctx, `
		INSERT INTO app_inbox (event_id, consumer, received_at)
		VALUES ($1, $2, now())
		ON CONFLICT (event_id, consumer) DO NOTHING`, eventID, s.consumer)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 0, nil
}

func (s *PostgresStore) Forget(ctx context.Context, eventID string) error {
	_, err := postgres.Conn(ctx, s.pool).Exec(ctx,
		`DELETE FROM app_inbox WHERE event_id = $1 AND consumer = $2`, eventID, s.consumer)
	return err
}

var _ appinbox.Store = (*PostgresStore)(nil)
