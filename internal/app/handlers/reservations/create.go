package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/middleware"
	"offerbook/internal/app/outbox"
	"offerbook/internal/app/validation"
	domainavailability "offerbook/internal/domain/availability"
	domainbooking "offerbook/internal/domain/booking"
	domainoffers "offerbook/internal/domain/offers"
)

const CreateKey = "reservations.create"

type CreateCommand struct {
	CommandID       string    `json:"-"`
	OfferID         string    `json:"offerId" validate:"required"`
	OccupantID      string    `json:"occupantId" validate:"required"`
	StartDate       time.Time `json:"startDate" validate:"required"`
	EndDate         time.Time `json:"endDate" validate:"required"`
	Adults          int       `json:"adults" validate:"min=1,max=16"`
	Children        int       `json:"children" validate:"min=0,max=16"`
	Status          string    `json:"status" validate:"omitempty,oneof=WAITING_APPROVAL PAYMENT_PENDING CONFIRMED"`
	IdempotencyKeyV string    `json:"-"`
}

func (c CreateCommand) Key() string { return CreateKey }

func (c CreateCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateCommand) ResultPrototype() any { return &dto.Reservation{} }

type CreateHandler struct {
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Observer domainavailability.Observer
	Clock    func() time.Time
}

func (h *CreateHandler) Handle(ctx context.Context, cmd CreateCommand) (*dto.Reservation, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	now := support.Now(h.Clock)

	rng, err := support.ResolveDates(nil, &cmd.StartDate, &cmd.EndDate, now)
	if err != nil {
		return nil, err
	}
	offer, err := unit.Offers().ByID(ctx, domainoffers.OfferID(cmd.OfferID))
	if err != nil {
		return nil, err
	}

	checker := domainavailability.NewChecker(unit.Reservations(), unit.Planning(), unit.Offers(), h.Observer)
	conflicts, err := checker.Check(ctx, nil, rng, domainavailability.OfferScope(offer))
	if err != nil {
		return nil, err
	}
	if err := domainavailability.AsError(conflicts); err != nil {
		return nil, err
	}

	id := cmd.CommandID
	if id == "" {
		id = uuid.NewString()
	}
	reservation, err := domainbooking.NewReservation(domainbooking.CreateParams{
		ID:        domainbooking.ReservationID(id),
		Offer:     offer.ID,
		Occupant:  domainbooking.OccupantID(cmd.OccupantID),
		Range:     rng,
		Adults:    cmd.Adults,
		Children:  cmd.Children,
		Status:    domainbooking.Status(cmd.Status),
		CreatedAt: now,
	})
	if err != nil {
		return nil, domainError(err)
	}
	if err := unit.Reservations().Save(ctx, reservation); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, reservation.Drain()); err != nil {
		return nil, err
	}
	out := dto.MapReservation(reservation)
	return &out, nil
}

// domainError maps guest and status errors onto their request fields.
func domainError(err error) error {
	switch err {
	case domainbooking.ErrInvalidAdults:
		return validation.Wrap("adults", err)
	case domainbooking.ErrInvalidChildren:
		return validation.Wrap("children", err)
	case domainbooking.ErrUnknownStatus:
		return validation.Wrap("status", err)
	case domainbooking.ErrUnknownCancelReason:
		return validation.Wrap("cancelReason", err)
	case domainbooking.ErrOccupantRequired:
		return validation.Wrap("occupantId", err)
	}
	return err
}

var _ commands.Handler[CreateCommand, *dto.Reservation] = (*CreateHandler)(nil)
var _ middleware.IdempotentCommand = CreateCommand{}
