package uow

import (
	"context"

	domainbooking "offerbook/internal/domain/booking"
	domainlocations "offerbook/internal/domain/locations"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
	domainreviews "offerbook/internal/domain/reviews"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Offers() domainoffers.Repository
	Locations() domainlocations.Repository
	Reservations() domainbooking.Repository
	Planning() domainplanning.Repository
	Reviews() domainreviews.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units whose repositories read the
// transaction handle from the context.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}
