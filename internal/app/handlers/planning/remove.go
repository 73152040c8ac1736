package planning

import (
	"context"
	"time"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/outbox"
	domainplanning "offerbook/internal/domain/planning"
)

const RemoveKey = "planning.remove"

type RemoveCommand struct {
	ID string `json:"id" validate:"required"`
}

func (c RemoveCommand) Key() string { return RemoveKey }

type RemoveResult struct {
	Removed bool `json:"removed"`
}

type RemoveHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   func() time.Time
}

func (h *RemoveHandler) Handle(ctx context.Context, cmd RemoveCommand) (*RemoveResult, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := unit.Planning().ByID(ctx, domainplanning.EntryID(cmd.ID))
	if err != nil {
		return nil, err
	}
	entry.MarkRemoved(support.Now(h.Clock))
	if err := unit.Planning().Delete(ctx, entry.ID); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, entry.Drain()); err != nil {
		return nil, err
	}
	return &RemoveResult{Removed: true}, nil
}

var _ commands.Handler[RemoveCommand, *RemoveResult] = (*RemoveHandler)(nil)
