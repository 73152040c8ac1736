package availability

import (
	"context"
	"fmt"

	"offerbook/internal/domain/booking"
	"offerbook/internal/domain/offers"
	"offerbook/internal/domain/planning"
	"offerbook/internal/domain/shared/daterange"
)

// Observer receives one call per completed check. result is "free", "conflict" or "error".
type Observer interface {
	ObserveCheck(scope, result string)
}

type Checker struct {
	reservations booking.Repository
	entries      planning.Repository
	offers       offers.Repository
	resolver     *Resolver
	observer     Observer
}

func NewChecker(reservations booking.Repository, entries planning.Repository, offerRepo offers.Repository, observer Observer) *Checker {
	return &Checker{
		reservations: reservations,
		entries:      entries,
		offers:       offerRepo,
		resolver:     NewResolver(entries),
		observer:     observer,
	}
}

// Check reports every category of existing interval that overlaps rng within scope.
// It never writes; callers hold the scope's lock across the check and the save.
func (c *Checker) Check(ctx context.Context, target Target, rng daterange.DateRange, scope Scope) ([]Conflict, error) {
	conflicts, err := c.check(ctx, target, rng, scope)
	if c.observer != nil && scope != nil {
		result := "free"
		switch {
		case err != nil:
			result = "error"
		case len(conflicts) > 0:
			result = "conflict"
		}
		c.observer.ObserveCheck(scope.Label(), result)
	}
	return conflicts, err
}

func (c *Checker) check(ctx context.Context, target Target, rng daterange.DateRange, scope Scope) ([]Conflict, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	var (
		reservations []*booking.Reservation
		entries      []*planning.Entry
		err          error
	)
	switch s := scope.(type) {
	case offerScope:
		if s.offer == nil {
			return nil, offers.ErrOfferNotFound
		}
		reservations, err = c.reservations.Find(ctx, booking.Filter{
			OfferIDs:         []offers.OfferID{s.offer.ID},
			ExcludeCancelled: true,
			ExcludeID:        excludedReservation(target),
		})
		if err != nil {
			return nil, fmt.Errorf("availability: load reservations: %w", err)
		}
		entries, err = c.resolver.Resolve(ctx, s.offer, excludedEntry(target))
		if err != nil {
			return nil, err
		}
	case hostScope:
		owned, err := c.offers.IDsByHost(ctx, s.host)
		if err != nil {
			return nil, fmt.Errorf("availability: load offers of host %s: %w", s.host, err)
		}
		if len(owned) > 0 {
			reservations, err = c.reservations.Find(ctx, booking.Filter{
				OfferIDs:         owned,
				ExcludeCancelled: true,
				ExcludeID:        excludedReservation(target),
			})
			if err != nil {
				return nil, fmt.Errorf("availability: load reservations: %w", err)
			}
		}
		entries, err = c.entries.Find(ctx, planning.Filter{
			OfferIDs:  owned,
			HostID:    s.host,
			ExcludeID: excludedEntry(target),
		})
		if err != nil {
			return nil, fmt.Errorf("availability: load blackouts: %w", err)
		}
	default:
		return nil, fmt.Errorf("availability: unsupported scope %T", scope)
	}

	var conflicts []Conflict
	if hits := overlappingReservations(reservations, rng); len(hits) > 0 {
		conflicts = append(conflicts, Conflict{Kind: ConflictReservation, Ranges: hits})
	}
	if hits := overlappingEntries(entries, rng); len(hits) > 0 {
		conflicts = append(conflicts, Conflict{Kind: ConflictBlackout, Ranges: hits})
	}
	return conflicts, nil
}

func overlappingReservations(list []*booking.Reservation, rng daterange.DateRange) []daterange.DateRange {
	var hits []daterange.DateRange
	for _, r := range list {
		// cancelled never blocks, whatever the store returned
		if !r.Status.BlocksCalendar() {
			continue
		}
		if r.Range.Overlaps(rng) {
			hits = append(hits, r.Range)
		}
	}
	daterange.SortByStart(hits)
	return hits
}

func overlappingEntries(list []*planning.Entry, rng daterange.DateRange) []daterange.DateRange {
	var hits []daterange.DateRange
	for _, e := range list {
		if e.Range.Overlaps(rng) {
			hits = append(hits, e.Range)
		}
	}
	daterange.SortByStart(hits)
	return hits
}
