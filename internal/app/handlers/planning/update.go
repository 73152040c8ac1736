package planning

import (
	"context"
	"time"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/outbox"
	domainavailability "offerbook/internal/domain/availability"
	domainplanning "offerbook/internal/domain/planning"
)

const UpdateKey = "planning.update"

// UpdateCommand edits a blackout entry. The scope of an entry is fixed.
type UpdateCommand struct {
	ID          string     `json:"-" validate:"required"`
	Name        *string    `json:"name" validate:"omitempty,max=200"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

func (c UpdateCommand) Key() string { return UpdateKey }

type UpdateHandler struct {
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Observer domainavailability.Observer
	Clock    func() time.Time
}

func (h *UpdateHandler) Handle(ctx context.Context, cmd UpdateCommand) (*dto.Blackout, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	now := support.Now(h.Clock)

	entry, err := unit.Planning().ByID(ctx, domainplanning.EntryID(cmd.ID))
	if err != nil {
		return nil, err
	}
	rng, err := support.ResolveDates(&entry.Range, cmd.StartDate, cmd.EndDate, now)
	if err != nil {
		return nil, err
	}
	scope, err := checkScope(ctx, unit, entry.Scope)
	if err != nil {
		return nil, err
	}

	checker := domainavailability.NewChecker(unit.Reservations(), unit.Planning(), unit.Offers(), h.Observer)
	conflicts, err := checker.Check(ctx, domainavailability.BlackoutTarget(entry.ID), rng, scope)
	if err != nil {
		return nil, err
	}
	if err := domainavailability.AsError(conflicts); err != nil {
		return nil, err
	}

	if err := entry.Apply(domainplanning.Change{Name: cmd.Name, Description: cmd.Description, Range: &rng}, now); err != nil {
		return nil, entryError(err)
	}
	if err := unit.Planning().Save(ctx, entry); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, entry.Drain()); err != nil {
		return nil, err
	}
	out := dto.MapBlackout(entry)
	return &out, nil
}

var _ commands.Handler[UpdateCommand, *dto.Blackout] = (*UpdateHandler)(nil)
