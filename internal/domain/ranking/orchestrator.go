package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"offerbook/internal/domain/geo"
	"offerbook/internal/domain/locations"
	"offerbook/internal/domain/offers"
)

// NearDistanceKm splits ranked results: offers closer than this always come first.
const NearDistanceKm = 50.0

// Origin is where distances are measured from. Valid coordinates win over City.
type Origin struct {
	Coordinates *geo.Coordinate
	City        *offers.CityID
}

// DurationObserver records how long a Rank call took.
type DurationObserver interface {
	ObserveRanking(d time.Duration)
}

type Orchestrator struct {
	locations locations.Repository
	observer  DurationObserver
}

func NewOrchestrator(locationRepo locations.Repository, observer DurationObserver) *Orchestrator {
	return &Orchestrator{locations: locationRepo, observer: observer}
}

// Rank scores candidates and returns them in result order. The input slice is
// not modified.
func (o *Orchestrator) Rank(ctx context.Context, cands []Candidate, origin Origin) ([]Candidate, error) {
	start := time.Now()
	if o.observer != nil {
		defer func() { o.observer.ObserveRanking(time.Since(start)) }()
	}

	out := make([]Candidate, len(cands))
	copy(out, cands)

	point, matchCity, err := o.resolve(ctx, origin)
	if err != nil {
		return nil, err
	}
	if point == nil {
		for i := range out {
			out[i].Distance = nil
		}
		Score(out, false, nil)
		return out, nil
	}

	for i := range out {
		out[i].Distance = nil
		if out[i].Offer != nil && out[i].Offer.Coordinates != nil {
			d := geo.DistanceKm(*point, *out[i].Offer.Coordinates)
			out[i].Distance = &d
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Distance, out[j].Distance
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		}
		return *di < *dj
	})
	Score(out, true, matchCity)
	return partitionNear(out), nil
}

func (o *Orchestrator) resolve(ctx context.Context, origin Origin) (*geo.Coordinate, *offers.CityID, error) {
	if origin.Coordinates != nil && origin.Coordinates.Valid() {
		p := *origin.Coordinates
		return &p, nil, nil
	}
	if origin.City == nil || o.locations == nil {
		return nil, nil, nil
	}
	city, err := o.locations.ByID(ctx, *origin.City)
	if err != nil {
		if errors.Is(err, locations.ErrLocationNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("ranking: resolve location %s: %w", *origin.City, err)
	}
	p := city.Coordinates
	id := city.ID
	return &p, &id, nil
}

// partitionNear moves offers under NearDistanceKm to the front, ordered by
// score. The rest keep their distance order.
func partitionNear(sorted []Candidate) []Candidate {
	near := make([]Candidate, 0, len(sorted))
	other := make([]Candidate, 0, len(sorted))
	for _, c := range sorted {
		if c.Distance != nil && *c.Distance < NearDistanceKm {
			near = append(near, c)
		} else {
			other = append(other, c)
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].SortScore > near[j].SortScore })
	return append(near, other...)
}
