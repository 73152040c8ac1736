package planning

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/outbox"
	"offerbook/internal/app/validation"
	domainavailability "offerbook/internal/domain/availability"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
)

const AddKey = "planning.add"

// AddCommand blocks a date range for one offer or for every offer of a host.
type AddCommand struct {
	CommandID   string    `json:"-"`
	OfferID     string    `json:"offerId"`
	HostID      string    `json:"hostId"`
	Name        string    `json:"name" validate:"max=200"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required"`
}

func (c AddCommand) Key() string { return AddKey }

type AddHandler struct {
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Observer domainavailability.Observer
	Clock    func() time.Time
}

func (h *AddHandler) Handle(ctx context.Context, cmd AddCommand) (*dto.Blackout, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	now := support.Now(h.Clock)

	scope, err := domainplanning.NewScope(domainoffers.OfferID(cmd.OfferID), domainoffers.HostID(cmd.HostID))
	if err != nil {
		return nil, &validation.Error{Fields: []validation.FieldError{
			{Field: "offerId", Message: err.Error()},
			{Field: "hostId", Message: err.Error()},
		}}
	}
	rng, err := support.ResolveDates(nil, &cmd.StartDate, &cmd.EndDate, now)
	if err != nil {
		return nil, err
	}
	guard, err := checkScope(ctx, unit, scope)
	if err != nil {
		return nil, err
	}

	checker := domainavailability.NewChecker(unit.Reservations(), unit.Planning(), unit.Offers(), h.Observer)
	conflicts, err := checker.Check(ctx, nil, rng, guard)
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
	entry, err := domainplanning.NewEntry(domainplanning.CreateParams{
		ID:          domainplanning.EntryID(id),
		Scope:       scope,
		Name:        cmd.Name,
		Description: cmd.Description,
		Range:       rng,
		Now:         now,
	})
	if err != nil {
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

func entryError(err error) error {
	if errors.Is(err, domainplanning.ErrNameTooLong) {
		return validation.Wrap("name", err)
	}
	return err
}

var _ commands.Handler[AddCommand, *dto.Blackout] = (*AddHandler)(nil)
