package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	domainlocations "offerbook/internal/domain/locations"
	domainoffers "offerbook/internal/domain/offers"
)

const locationColumns = `id, name, department, population, lat, lon`

type LocationRepository struct {
	pool *pgxpool.Pool
}

func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

func (r *LocationRepository) ByID(ctx context.Context, id domainoffers.CityID) (*domainlocations.City, error) {
	row := Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, string(id))
	c, err := scanCity(row)
	if err != nil {
		return nil, notFound(err, domainlocations.ErrLocationNotFound)
	}
	return c, nil
}

func (r *LocationRepository) SearchByName(ctx context.Context, prefix string, order domainlocations.Order, limit int) ([]*domainlocations.City, error) {
	sql, args := citySearchQuery(prefix, order, limit)
	rows, err := Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domainlocations.City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *LocationRepository) Save(ctx context.Context, c *domainlocations.City) error {
	_, err := Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO locations (`+locationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, department = EXCLUDED.department, population = EXCLUDED.population,
			lat = EXCLUDED.lat, lon = EXCLUDED.lon`,
		string(c.ID), c.Name, c.Department, c.Population, c.Coordinates.Lat, c.Coordinates.Lon)
	return err
}

func citySearchQuery(prefix string, order domainlocations.Order, limit int) (string, []any) {
	var w where
	if p := strings.ToLower(strings.TrimSpace(prefix)); p != "" {
		w.and("lower(name) LIKE " + w.arg(escapeLike(p)+"%"))
	}
	sql := `SELECT ` + locationColumns + ` FROM locations` + w.String()
	if order == domainlocations.OrderByName {
		sql += ` ORDER BY lower(name)`
	} else {
		sql += ` ORDER BY population DESC, name`
	}
	if limit > 0 {
		sql += ` LIMIT ` + strconv.Itoa(limit)
	}
	return sql, w.args
}

func scanCity(row rowScanner) (*domainlocations.City, error) {
	var (
		c  domainlocations.City
		id string
	)
	if err := row.Scan(&id, &c.Name, &c.Department, &c.Population, &c.Coordinates.Lat, &c.Coordinates.Lon); err != nil {
		return nil, err
	}
	c.ID = domainoffers.CityID(id)
	return &c, nil
}
