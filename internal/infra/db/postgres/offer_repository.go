package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"offerbook/internal/domain/geo"
	domainoffers "offerbook/internal/domain/offers"
)

const offerColumns = `id, host_id, city_id, title, lat, lon, status, created_at, updated_at`

type OfferRepository struct {
	pool *pgxpool.Pool
}

func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

func (r *OfferRepository) ByID(ctx context.Context, id domainoffers.OfferID) (*domainoffers.Offer, error) {
	row := Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, string(id))
	o, err := scanOffer(row)
	if err != nil {
		return nil, notFound(err, domainoffers.ErrOfferNotFound)
	}
	return o, nil
}

func (r *OfferRepository) IDsByHost(ctx context.Context, host domainoffers.HostID) ([]domainoffers.OfferID, error) {
	rows, err := Conn(ctx, r.pool).Query(ctx, `SELECT id FROM offers WHERE host_id = $1 ORDER BY created_at, id`, string(host))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []domainoffers.OfferID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, domainoffers.OfferID(id))
	}
	return ids, rows.Err()
}

func (r *OfferRepository) HostExists(ctx context.Context, host domainoffers.HostID) (bool, error) {
	var exists bool
	err := Conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM offers WHERE host_id = $1)`, string(host)).Scan(&exists)
	return exists, err
}

func (r *OfferRepository) Search(ctx context.Context, params domainoffers.SearchParams) ([]*domainoffers.Offer, error) {
	sql, args := offerSearchQuery(params)
	rows, err := Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domainoffers.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *OfferRepository) Save(ctx context.Context, o *domainoffers.Offer) error {
	var lat, lon *float64
	if o.Coordinates != nil {
		lat, lon = &o.Coordinates.Lat, &o.Coordinates.Lon
	}
	_, err := Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO offers (`+offerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			host_id = EXCLUDED.host_id, city_id = EXCLUDED.city_id, title = EXCLUDED.title,
			lat = EXCLUDED.lat, lon = EXCLUDED.lon, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		string(o.ID), string(o.Host), string(o.City), o.Title, lat, lon, string(o.Status), o.CreatedAt.UTC(), o.UpdatedAt.UTC())
	return err
}

func offerSearchQuery(params domainoffers.SearchParams) (string, []any) {
	params = params.Normalized()
	var w where
	w.and("status = " + w.arg(string(params.Status)))
	if params.Host != "" {
		w.and("host_id = " + w.arg(string(params.Host)))
	}
	return `SELECT ` + offerColumns + ` FROM offers` + w.String() + ` ORDER BY created_at, id`, w.args
}

func scanOffer(row rowScanner) (*domainoffers.Offer, error) {
	var (
		o                    domainoffers.Offer
		id, host, city, stat string
		lat, lon             *float64
	)
	if err := row.Scan(&id, &host, &city, &o.Title, &lat, &lon, &stat, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.ID = domainoffers.OfferID(id)
	o.Host = domainoffers.HostID(host)
	o.City = domainoffers.CityID(city)
	o.Status = domainoffers.Status(stat)
	if lat != nil && lon != nil {
		o.Coordinates = &geo.Coordinate{Lat: *lat, Lon: *lon}
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return &o, nil
}
