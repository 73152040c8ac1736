package reservations

import (
	"context"
	"time"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/outbox"
	domainavailability "offerbook/internal/domain/availability"
	domainbooking "offerbook/internal/domain/booking"
)

const UpdateKey = "reservations.update"

// UpdateCommand changes a reservation. Nil fields keep their stored value.
type UpdateCommand struct {
	ID           string     `json:"-" validate:"required"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	Adults       *int       `json:"adults" validate:"omitempty,min=1,max=16"`
	Children     *int       `json:"children" validate:"omitempty,min=0,max=16"`
	Status       *string    `json:"status" validate:"omitempty,oneof=WAITING_APPROVAL PAYMENT_PENDING CONFIRMED CANCELLED"`
	CancelReason *string    `json:"cancelReason"`
}

func (c UpdateCommand) Key() string { return UpdateKey }

type UpdateHandler struct {
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Observer domainavailability.Observer
	Clock    func() time.Time
}

func (h *UpdateHandler) Handle(ctx context.Context, cmd UpdateCommand) (*dto.Reservation, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	now := support.Now(h.Clock)

	reservation, err := unit.Reservations().ByID(ctx, domainbooking.ReservationID(cmd.ID))
	if err != nil {
		return nil, err
	}
	if reservation.Status == domainbooking.StatusCancelled {
		return nil, domainbooking.ErrCancelledImmutable
	}

	rng, err := support.ResolveDates(&reservation.Range, cmd.StartDate, cmd.EndDate, now)
	if err != nil {
		return nil, err
	}

	status := reservation.Status
	if cmd.Status != nil {
		if status, err = domainbooking.ParseStatus(*cmd.Status); err != nil {
			return nil, domainError(err)
		}
	}
	reason := domainbooking.CancelUnknown
	if cmd.CancelReason != nil {
		if reason, err = domainbooking.ParseCancelReason(*cmd.CancelReason); err != nil {
			return nil, domainError(err)
		}
	}

	// a reservation being cancelled frees its dates, nothing to check
	if status.BlocksCalendar() {
		offer, err := unit.Offers().ByID(ctx, reservation.Offer)
		if err != nil {
			return nil, err
		}
		checker := domainavailability.NewChecker(unit.Reservations(), unit.Planning(), unit.Offers(), h.Observer)
		conflicts, err := checker.Check(ctx, domainavailability.ReservationTarget(reservation.ID), rng, domainavailability.OfferScope(offer))
		if err != nil {
			return nil, err
		}
		if err := domainavailability.AsError(conflicts); err != nil {
			return nil, err
		}
	}

	if err := reservation.Reschedule(rng, now); err != nil {
		return nil, err
	}
	if cmd.Adults != nil || cmd.Children != nil {
		adults, children := reservation.Adults, reservation.Children
		if cmd.Adults != nil {
			adults = *cmd.Adults
		}
		if cmd.Children != nil {
			children = *cmd.Children
		}
		if err := reservation.UpdateGuests(adults, children, now); err != nil {
			return nil, domainError(err)
		}
	}
	if err := reservation.ChangeStatus(status, reason, now); err != nil {
		return nil, err
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

var _ commands.Handler[UpdateCommand, *dto.Reservation] = (*UpdateHandler)(nil)
