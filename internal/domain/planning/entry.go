package planning

import (
	"context"
	"errors"
	"strings"
	"time"

	"offerbook/internal/domain/offers"
	"offerbook/internal/domain/shared/daterange"
	"offerbook/internal/domain/shared/events"
)

var (
	ErrEntryNotFound  = errors.New("planning: entry not found")
	ErrScopeRequired  = errors.New("planning: exactly one of offer or host is required")
	ErrNameTooLong    = errors.New("planning: name is too long")
	ErrScopeImmutable = errors.New("planning: scope cannot be changed")
)

const maxNameLength = 200

type EntryID string

// Scope says what a blackout entry covers. The only implementations are
// OfferScope and HostScope.
type Scope interface {
	isScope()
	String() string
}

// OfferScope blocks a single offer.
type OfferScope struct{ Offer offers.OfferID }

// HostScope blocks every offer of a host.
type HostScope struct{ Host offers.HostID }

func (OfferScope) isScope() {}
func (HostScope) isScope()  {}

func (s OfferScope) String() string { return "offer:" + string(s.Offer) }
func (s HostScope) String() string  { return "host:" + string(s.Host) }

// NewScope builds a scope from optional ids; exactly one must be set.
func NewScope(offer offers.OfferID, host offers.HostID) (Scope, error) {
	offer = offers.OfferID(strings.TrimSpace(string(offer)))
	host = offers.HostID(strings.TrimSpace(string(host)))
	switch {
	case offer != "" && host == "":
		return OfferScope{Offer: offer}, nil
	case host != "" && offer == "":
		return HostScope{Host: host}, nil
	}
	return nil, ErrScopeRequired
}

// Entry is a blackout period during which bookings are refused.
type Entry struct {
	ID          EntryID
	Scope       Scope
	Name        string
	Description string
	Range       daterange.DateRange
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

// Filter matches entries scoped to any of OfferIDs, or host-scoped to HostID.
// With both empty it matches everything.
type Filter struct {
	OfferIDs  []offers.OfferID
	HostID    offers.HostID
	ExcludeID EntryID
}

func (f Filter) Matches(e *Entry) bool {
	if e == nil {
		return false
	}
	if f.ExcludeID != "" && e.ID == f.ExcludeID {
		return false
	}
	if len(f.OfferIDs) == 0 && f.HostID == "" {
		return true
	}
	switch s := e.Scope.(type) {
	case OfferScope:
		for _, id := range f.OfferIDs {
			if s.Offer == id {
				return true
			}
		}
	case HostScope:
		return f.HostID != "" && s.Host == f.HostID
	}
	return false
}

type Repository interface {
	ByID(ctx context.Context, id EntryID) (*Entry, error)
	Find(ctx context.Context, filter Filter) ([]*Entry, error)
	Save(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id EntryID) error
}

type CreateParams struct {
	ID          EntryID
	Scope       Scope
	Name        string
	Description string
	Range       daterange.DateRange
	Now         time.Time
}

func NewEntry(params CreateParams) (*Entry, error) {
	if params.Scope == nil {
		return nil, ErrScopeRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(params.Name)
	if len(name) > maxNameLength {
		return nil, ErrNameTooLong
	}
	now := params.Now.UTC()
	e := &Entry{
		ID:          params.ID,
		Scope:       params.Scope,
		Name:        name,
		Description: strings.TrimSpace(params.Description),
		Range:       params.Range,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e.Record(BlackoutAdded{EntryID: e.ID, Scope: e.Scope.String(), Range: e.Range, At: now})
	return e, nil
}

// Change applies the optional fields of an update. Nil fields stay as they are.
type Change struct {
	Name        *string
	Description *string
	Range       *daterange.DateRange
}

func (e *Entry) Apply(change Change, now time.Time) error {
	if change.Range != nil {
		if err := change.Range.Validate(); err != nil {
			return err
		}
		e.Range = *change.Range
	}
	if change.Name != nil {
		name := strings.TrimSpace(*change.Name)
		if len(name) > maxNameLength {
			return ErrNameTooLong
		}
		e.Name = name
	}
	if change.Description != nil {
		e.Description = strings.TrimSpace(*change.Description)
	}
	e.UpdatedAt = now.UTC()
	e.Record(BlackoutUpdated{EntryID: e.ID, Scope: e.Scope.String(), Range: e.Range, At: e.UpdatedAt})
	return nil
}

func (e *Entry) MarkRemoved(now time.Time) {
	e.Record(BlackoutRemoved{EntryID: e.ID, Scope: e.Scope.String(), At: now.UTC()})
}
