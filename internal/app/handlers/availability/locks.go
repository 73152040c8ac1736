package availability

import (
	"context"
	"errors"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/handlers/catalog"
	"offerbook/internal/app/handlers/planning"
	"offerbook/internal/app/handlers/reservations"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/middleware"
	"offerbook/internal/app/uow"
	domainavailability "offerbook/internal/domain/availability"
	domainbooking "offerbook/internal/domain/booking"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
)

// LockKeys names the offer and host keys each calendar-writing command holds.
// Removals only free dates and take no lock. Catalog syncs lock the offer and
// its hosts since they can move an offer between hosts.
//
// Keys are resolved before the command's transaction opens, from a read-only
// unit. The offer of a reservation and the scope of an entry never change, so
// reading them early is safe.
func LockKeys(factory uow.UoWFactory) middleware.LockKeyFunc {
	return func(ctx context.Context, cmd commands.Command) ([]string, error) {
		switch c := cmd.(type) {
		case reservations.CreateCommand:
			return []string{domainavailability.OfferLockKey(domainoffers.OfferID(c.OfferID))}, nil
		case planning.AddCommand:
			scope, err := domainplanning.NewScope(domainoffers.OfferID(c.OfferID), domainoffers.HostID(c.HostID))
			if err != nil {
				// validation reports it
				return nil, nil
			}
			return keysForScope(ctx, factory, scope)
		case reservations.UpdateCommand:
			return withUnit(ctx, factory, func(ctx context.Context, unit uow.UnitOfWork) ([]string, error) {
				r, err := unit.Reservations().ByID(ctx, domainbooking.ReservationID(c.ID))
				if err != nil {
					return nil, err
				}
				return []string{domainavailability.OfferLockKey(r.Offer)}, nil
			})
		case catalog.SyncOfferCommand:
			return withUnit(ctx, factory, func(ctx context.Context, unit uow.UnitOfWork) ([]string, error) {
				keys := []string{
					domainavailability.OfferLockKey(domainoffers.OfferID(c.OfferID)),
					domainavailability.HostLockKey(domainoffers.HostID(c.HostID)),
				}
				current, err := unit.Offers().ByID(ctx, domainoffers.OfferID(c.OfferID))
				if errors.Is(err, domainoffers.ErrOfferNotFound) {
					return keys, nil
				}
				if err != nil {
					return nil, err
				}
				// a host change must also exclude blackouts of the previous host
				return append(keys, domainavailability.HostLockKey(current.Host)), nil
			})
		case planning.UpdateCommand:
			return withUnit(ctx, factory, func(ctx context.Context, unit uow.UnitOfWork) ([]string, error) {
				e, err := unit.Planning().ByID(ctx, domainplanning.EntryID(c.ID))
				if err != nil {
					return nil, err
				}
				return scopeKeys(ctx, unit, e.Scope)
			})
		}
		return nil, nil
	}
}

func keysForScope(ctx context.Context, factory uow.UoWFactory, scope domainplanning.Scope) ([]string, error) {
	return withUnit(ctx, factory, func(ctx context.Context, unit uow.UnitOfWork) ([]string, error) {
		return scopeKeys(ctx, unit, scope)
	})
}

func scopeKeys(ctx context.Context, unit uow.UnitOfWork, scope domainplanning.Scope) ([]string, error) {
	switch s := scope.(type) {
	case domainplanning.OfferScope:
		return []string{domainavailability.OfferLockKey(s.Offer)}, nil
	case domainplanning.HostScope:
		owned, err := unit.Offers().IDsByHost(ctx, s.Host)
		if err != nil {
			return nil, err
		}
		return domainavailability.HostLockKeys(s.Host, owned), nil
	}
	return nil, nil
}

func withUnit(ctx context.Context, factory uow.UoWFactory, fn func(context.Context, uow.UnitOfWork) ([]string, error)) ([]string, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, factory)
	if err != nil {
		return nil, err
	}
	defer support.Release(cleanup)
	return fn(execCtx, unit)
}
