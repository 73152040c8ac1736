package availability

import (
	"context"
	"fmt"

	"offerbook/internal/domain/offers"
	"offerbook/internal/domain/planning"
)

// Resolver finds the blackout entries that apply to an offer: its own entries
// plus the host-wide entries of its owner.
type Resolver struct {
	entries planning.Repository
}

func NewResolver(entries planning.Repository) *Resolver {
	return &Resolver{entries: entries}
}

func (r *Resolver) Resolve(ctx context.Context, offer *offers.Offer, exclude planning.EntryID) ([]*planning.Entry, error) {
	if offer == nil {
		return nil, offers.ErrOfferNotFound
	}
	list, err := r.entries.Find(ctx, planning.Filter{
		OfferIDs:  []offers.OfferID{offer.ID},
		HostID:    offer.Host,
		ExcludeID: exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("availability: resolve blackouts for %s: %w", offer.ID, err)
	}
	return list, nil
}
