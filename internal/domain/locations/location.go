package locations

import (
	"context"
	"errors"
	"strings"

	"offerbook/internal/domain/geo"
	"offerbook/internal/domain/offers"
)

var ErrLocationNotFound = errors.New("locations: location not found")

// Order selects how SearchByName sorts cities.
type Order string

const (
	OrderByPopulation Order = "population"
	OrderByName       Order = "name"
)

// City is a reference location usable as a search origin.
type City struct {
	ID          offers.CityID
	Name        string
	Department  string
	Population  int
	Coordinates geo.Coordinate
}

type Repository interface {
	ByID(ctx context.Context, id offers.CityID) (*City, error)
	SearchByName(ctx context.Context, prefix string, order Order, limit int) ([]*City, error)
	Save(ctx context.Context, city *City) error
}

// ParseOrder falls back to population ordering for anything but "name".
func ParseOrder(raw string) Order {
	if strings.EqualFold(strings.TrimSpace(raw), string(OrderByName)) {
		return OrderByName
	}
	return OrderByPopulation
}

// MatchesPrefix compares names case-insensitively.
func (c *City) MatchesPrefix(prefix string) bool {
	return strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(strings.TrimSpace(prefix)))
}
