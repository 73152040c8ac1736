package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	domainbooking "offerbook/internal/domain/booking"
	domainoffers "offerbook/internal/domain/offers"
	domainreviews "offerbook/internal/domain/reviews"
)

type ReviewRepository struct {
	pool *pgxpool.Pool
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func (r *ReviewRepository) ListByOffers(ctx context.Context, ids []domainoffers.OfferID) ([]*domainreviews.Review, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := Conn(ctx, r.pool).Query(ctx, `
		SELECT id, reservation_id, offer_id, author, rating, body, created_at
		FROM reviews WHERE offer_id = ANY($1)`, stringsOf(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domainreviews.Review
	for rows.Next() {
		var (
			rv                     domainreviews.Review
			id, reservation, offer string
		)
		if err := rows.Scan(&id, &reservation, &offer, &rv.Author, &rv.Rating, &rv.Text, &rv.CreatedAt); err != nil {
			return nil, err
		}
		rv.ID = domainreviews.ReviewID(id)
		rv.Reservation = domainbooking.ReservationID(reservation)
		rv.Offer = domainoffers.OfferID(offer)
		rv.CreatedAt = rv.CreatedAt.UTC()
		out = append(out, &rv)
	}
	return out, rows.Err()
}

func (r *ReviewRepository) Save(ctx context.Context, rv *domainreviews.Review) error {
	if err := rv.Validate(); err != nil {
		return err
	}
	_, err := Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO reviews (id, reservation_id, offer_id, author, rating, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET rating = EXCLUDED.rating, body = EXCLUDED.body`,
		string(rv.ID), string(rv.Reservation), string(rv.Offer), rv.Author, rv.Rating, rv.Text, rv.CreatedAt.UTC())
	return err
}
