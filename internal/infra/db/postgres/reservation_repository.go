package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	domainbooking "offerbook/internal/domain/booking"
	domainoffers "offerbook/internal/domain/offers"
)

const reservationColumns = `id, offer_id, occupant_id, start_at, end_at, adults, children, status, cancel_reason, created_at, updated_at, version`

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainbooking.ReservationID) (*domainbooking.Reservation, error) {
	row := Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, string(id))
	res, err := scanReservation(row)
	if err != nil {
		return nil, notFound(err, domainbooking.ErrReservationNotFound)
	}
	return res, nil
}

// Find returns matches ordered by start date.
func (r *ReservationRepository) Find(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Reservation, error) {
	sql, args := reservationQuery(filter)
	rows, err := Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domainbooking.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Save inserts version 1 or updates guarded by the loaded version.
func (r *ReservationRepository) Save(ctx context.Context, res *domainbooking.Reservation) error {
	conn := Conn(ctx, r.pool)
	next := res.Version + 1
	args := []any{
		string(res.ID), string(res.Offer), string(res.Occupant), res.Range.Start.UTC(), res.Range.End.UTC(),
		res.Adults, res.Children, string(res.Status), string(res.CancelReason), res.CreatedAt.UTC(), res.UpdatedAt.UTC(), next,
	}
	var sql string
	if res.Version == 0 {
		sql = `INSERT INTO reservations (` + reservationColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO NOTHING`
	} else {
		sql = `UPDATE reservations SET
				offer_id = $2, occupant_id = $3, start_at = $4, end_at = $5, adults = $6, children = $7,
				status = $8, cancel_reason = $9, created_at = $10, updated_at = $11, version = $12
			WHERE id = $1 AND version = $13`
		args = append(args, res.Version)
	}
	tag, err := conn.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	res.Version = next
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id domainbooking.ReservationID) error {
	tag, err := Conn(ctx, r.pool).Exec(ctx, `DELETE FROM reservations WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainbooking.ErrReservationNotFound
	}
	return nil
}

func reservationQuery(f domainbooking.Filter) (string, []any) {
	var w where
	if len(f.OfferIDs) > 0 {
		w.and("offer_id = ANY(" + w.arg(stringsOf(f.OfferIDs)) + ")")
	}
	if f.Occupant != "" {
		w.and("occupant_id = " + w.arg(string(f.Occupant)))
	}
	if f.ExcludeCancelled {
		w.and("status <> " + w.arg(string(domainbooking.StatusCancelled)))
	}
	if f.ExcludeID != "" {
		w.and("id <> " + w.arg(string(f.ExcludeID)))
	}
	return `SELECT ` + reservationColumns + ` FROM reservations` + w.String() + ` ORDER BY start_at, id`, w.args
}

func scanReservation(row rowScanner) (*domainbooking.Reservation, error) {
	var (
		res                                 domainbooking.Reservation
		id, offer, occupant, status, reason string
	)
	err := row.Scan(&id, &offer, &occupant, &res.Range.Start, &res.Range.End, &res.Adults, &res.Children,
		&status, &reason, &res.CreatedAt, &res.UpdatedAt, &res.Version)
	if err != nil {
		return nil, err
	}
	res.ID = domainbooking.ReservationID(id)
	res.Offer = domainoffers.OfferID(offer)
	res.Occupant = domainbooking.OccupantID(occupant)
	if res.Status, res.CancelReason, err = domainbooking.ParseStored(status, reason); err != nil {
		return nil, fmt.Errorf("postgres: reservation %s: %w", id, err)
	}
	res.Range.Start = res.Range.Start.UTC()
	res.Range.End = res.Range.End.UTC()
	res.CreatedAt = res.CreatedAt.UTC()
	res.UpdatedAt = res.UpdatedAt.UTC()
	return &res, nil
}
