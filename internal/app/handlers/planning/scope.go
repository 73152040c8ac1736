package planning

import (
	"context"

	"offerbook/internal/app/uow"
	domainavailability "offerbook/internal/domain/availability"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
)

// checkScope turns an entry scope into the availability scope that guards it.
// It also proves the offer or host exists.
func checkScope(ctx context.Context, unit uow.UnitOfWork, scope domainplanning.Scope) (domainavailability.Scope, error) {
	switch s := scope.(type) {
	case domainplanning.OfferScope:
		offer, err := unit.Offers().ByID(ctx, s.Offer)
		if err != nil {
			return nil, err
		}
		return domainavailability.OfferScope(offer), nil
	case domainplanning.HostScope:
		ok, err := unit.Offers().HostExists(ctx, s.Host)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domainoffers.ErrHostNotFound
		}
		return domainavailability.HostScope(s.Host), nil
	}
	return nil, domainplanning.ErrScopeRequired
}
