package memory

import (
	"context"
	"errors"

	"offerbook/internal/app/uow"
	domainbooking "offerbook/internal/domain/booking"
	domainlocations "offerbook/internal/domain/locations"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
	domainreviews "offerbook/internal/domain/reviews"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	OffersRepo       domainoffers.Repository
	LocationsRepo    domainlocations.Repository
	ReservationsRepo domainbooking.Repository
	PlanningRepo     domainplanning.Repository
	ReviewsRepo      domainreviews.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// NewFactory builds a factory over fresh empty repositories.
func NewFactory() Factory {
	return Factory{
		OffersRepo:       NewOfferRepository(),
		LocationsRepo:    NewLocationRepository(),
		ReservationsRepo: NewReservationRepository(),
		PlanningRepo:     NewPlanningRepository(),
		ReviewsRepo:      NewReviewsRepository(),
	}
}

// Begin starts a lightweight transaction boundary. There is no isolation or
// rollback; writers rely on the command locks.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.OffersRepo == nil || f.LocationsRepo == nil || f.ReservationsRepo == nil || f.PlanningRepo == nil || f.ReviewsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

type Unit struct {
	factory Factory
}

func (u *Unit) Offers() domainoffers.Repository        { return u.factory.OffersRepo }
func (u *Unit) Locations() domainlocations.Repository  { return u.factory.LocationsRepo }
func (u *Unit) Reservations() domainbooking.Repository { return u.factory.ReservationsRepo }
func (u *Unit) Planning() domainplanning.Repository    { return u.factory.PlanningRepo }
func (u *Unit) Reviews() domainreviews.Repository      { return u.factory.ReviewsRepo }
func (u *Unit) Commit(ctx context.Context) error       { return nil }
func (u *Unit) Rollback(ctx context.Context) error     { return nil }

var _ uow.UoWFactory = Factory{}
