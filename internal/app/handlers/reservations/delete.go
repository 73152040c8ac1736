package reservations

import (
	"context"
	"time"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/outbox"
	domainbooking "offerbook/internal/domain/booking"
)

const DeleteKey = "reservations.delete"

type DeleteCommand struct {
	ID string `json:"id" validate:"required"`
}

func (c DeleteCommand) Key() string { return DeleteKey }

type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

// DeleteHandler removes a reservation outright. Removal frees dates, so no
// availability check runs.
type DeleteHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   func() time.Time
}

func (h *DeleteHandler) Handle(ctx context.Context, cmd DeleteCommand) (*DeleteResult, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	reservation, err := unit.Reservations().ByID(ctx, domainbooking.ReservationID(cmd.ID))
	if err != nil {
		return nil, err
	}
	reservation.MarkRemoved(support.Now(h.Clock))
	if err := unit.Reservations().Delete(ctx, reservation.ID); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, reservation.Drain()); err != nil {
		return nil, err
	}
	return &DeleteResult{Deleted: true}, nil
}

var _ commands.Handler[DeleteCommand, *DeleteResult] = (*DeleteHandler)(nil)
