package availability

import (
	"context"
	"time"

	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/queries"
	"offerbook/internal/app/uow"
	domainavailability "offerbook/internal/domain/availability"
	domainbooking "offerbook/internal/domain/booking"
	domainoffers "offerbook/internal/domain/offers"
)

const CheckKey = "availability.check"

// CheckQuery asks whether an offer is free over [StartDate, EndDate).
// ExcludeReservationID lets a client test a reschedule before sending it.
type CheckQuery struct {
	OfferID              string    `json:"offerId" validate:"required"`
	StartDate            time.Time `json:"startDate" validate:"required"`
	EndDate              time.Time `json:"endDate" validate:"required"`
	ExcludeReservationID string    `json:"excludeReservationId"`
}

func (q CheckQuery) Key() string { return CheckKey }

type CheckHandler struct {
	UoWFactory uow.UoWFactory
	Observer   domainavailability.Observer
	Clock      func() time.Time
}

func (h *CheckHandler) Handle(ctx context.Context, q CheckQuery) (dto.Availability, error) {
	rng, err := support.ResolveDates(nil, &q.StartDate, &q.EndDate, support.Now(h.Clock))
	if err != nil {
		return dto.Availability{}, err
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Availability{}, err
	}
	defer support.Release(cleanup)

	offer, err := unit.Offers().ByID(execCtx, domainoffers.OfferID(q.OfferID))
	if err != nil {
		return dto.Availability{}, err
	}
	var target domainavailability.Target
	if q.ExcludeReservationID != "" {
		target = domainavailability.ReservationTarget(domainbooking.ReservationID(q.ExcludeReservationID))
	}
	checker := domainavailability.NewChecker(unit.Reservations(), unit.Planning(), unit.Offers(), h.Observer)
	conflicts, err := checker.Check(execCtx, target, rng, domainavailability.OfferScope(offer))
	if err != nil {
		return dto.Availability{}, err
	}
	return dto.MapAvailability(conflicts), nil
}

var _ queries.Handler[CheckQuery, dto.Availability] = (*CheckHandler)(nil)
