package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"offerbook/internal/domain/offers"
	"offerbook/internal/domain/shared/daterange"
	"offerbook/internal/domain/shared/events"
)

const (
	maxAdults   = 16
	maxChildren = 16
)

var (
	ErrReservationNotFound = errors.New("booking: reservation not found")
	ErrInvalidAdults       = errors.New("booking: adults must be between 1 and 16")
	ErrInvalidChildren     = errors.New("booking: children must be between 0 and 16")
	ErrCancelledImmutable  = errors.New("booking: cancelled reservation cannot be modified")
	ErrUnknownStatus       = errors.New("booking: unknown status")
	ErrUnknownCancelReason = errors.New("booking: unknown cancel reason")
	ErrOccupantRequired    = errors.New("booking: occupant is required")
)

type ReservationID string
type OccupantID string

type Status string

const (
	StatusWaitingApproval Status = "WAITING_APPROVAL"
	StatusPaymentPending  Status = "PAYMENT_PENDING"
	StatusConfirmed       Status = "CONFIRMED"
	StatusCancelled       Status = "CANCELLED"
)

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusWaitingApproval, StatusPaymentPending, StatusConfirmed, StatusCancelled:
		return s, nil
	}
	return "", ErrUnknownStatus
}

// BlocksCalendar reports whether a reservation in this status occupies its dates.
// Every status is listed so a new one has to take a side here.
func (s Status) BlocksCalendar() bool {
	switch s {
	case StatusWaitingApproval, StatusPaymentPending, StatusConfirmed:
		return true
	case StatusCancelled:
		return false
	}
	panic("booking: unhandled status " + string(s))
}

type CancelReason string

const (
	CancelUnknown    CancelReason = "UNKNOWN"
	CancelByOwner    CancelReason = "OWNER_CANCELLATION"
	CancelByOccupant CancelReason = "OCCUPANT_CANCELLATION"
	CancelPayment    CancelReason = "PAYMENT_REFUSED"
	CancelByStaff    CancelReason = "STAFF_CANCELLATION"
)

func ParseCancelReason(raw string) (CancelReason, error) {
	r := CancelReason(strings.ToUpper(strings.TrimSpace(raw)))
	switch r {
	case CancelUnknown, CancelByOwner, CancelByOccupant, CancelPayment, CancelByStaff:
		return r, nil
	}
	return "", ErrUnknownCancelReason
}

// ParseStored reads a persisted status and cancel reason. Stores call it when
// loading rows so an unknown value surfaces as an error, never as a status
// BlocksCalendar does not know. An empty reason reads as UNKNOWN.
func ParseStored(status, reason string) (Status, CancelReason, error) {
	s, err := ParseStatus(status)
	if err != nil {
		return "", "", fmt.Errorf("%w %q", err, status)
	}
	if strings.TrimSpace(reason) == "" {
		return s, CancelUnknown, nil
	}
	r, err := ParseCancelReason(reason)
	if err != nil {
		return "", "", fmt.Errorf("%w %q", err, reason)
	}
	return s, r, nil
}

type Reservation struct {
	ID           ReservationID
	Offer        offers.OfferID
	Occupant     OccupantID
	Range        daterange.DateRange
	Adults       int
	Children     int
	Status       Status
	CancelReason CancelReason
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
	events.EventRecorder
}

// Filter selects reservations. Empty OfferIDs means any offer.
type Filter struct {
	OfferIDs         []offers.OfferID
	Occupant         OccupantID
	ExcludeCancelled bool
	ExcludeID        ReservationID
}

// Matches evaluates the filter in memory.
func (f Filter) Matches(r *Reservation) bool {
	if r == nil {
		return false
	}
	if f.ExcludeID != "" && r.ID == f.ExcludeID {
		return false
	}
	if f.ExcludeCancelled && !r.Status.BlocksCalendar() {
		return false
	}
	if f.Occupant != "" && r.Occupant != f.Occupant {
		return false
	}
	if len(f.OfferIDs) == 0 {
		return true
	}
	for _, id := range f.OfferIDs {
		if r.Offer == id {
			return true
		}
	}
	return false
}

type Repository interface {
	ByID(ctx context.Context, id ReservationID) (*Reservation, error)
	Find(ctx context.Context, filter Filter) ([]*Reservation, error)
	Save(ctx context.Context, reservation *Reservation) error
	Delete(ctx context.Context, id ReservationID) error
}

type CreateParams struct {
	ID        ReservationID
	Offer     offers.OfferID
	Occupant  OccupantID
	Range     daterange.DateRange
	Adults    int
	Children  int
	Status    Status
	CreatedAt time.Time
}

func NewReservation(params CreateParams) (*Reservation, error) {
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(params.Occupant)) == "" {
		return nil, ErrOccupantRequired
	}
	if err := validateGuests(params.Adults, params.Children); err != nil {
		return nil, err
	}
	status := params.Status
	if status == "" {
		status = StatusWaitingApproval
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:           params.ID,
		Offer:        params.Offer,
		Occupant:     params.Occupant,
		Range:        params.Range,
		Adults:       params.Adults,
		Children:     params.Children,
		Status:       status,
		CancelReason: CancelUnknown,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.Record(ReservationRequested{ReservationID: r.ID, OfferID: r.Offer, OccupantID: r.Occupant, Range: r.Range, Status: r.Status, At: now})
	return r, nil
}

func (r *Reservation) Reschedule(rng daterange.DateRange, now time.Time) error {
	if r.Status == StatusCancelled {
		return ErrCancelledImmutable
	}
	if err := rng.Validate(); err != nil {
		return err
	}
	if rng == r.Range {
		return nil
	}
	previous := r.Range
	r.Range = rng
	r.UpdatedAt = now.UTC()
	r.Record(ReservationRescheduled{ReservationID: r.ID, OfferID: r.Offer, Previous: previous, Range: rng, At: r.UpdatedAt})
	return nil
}

func (r *Reservation) UpdateGuests(adults, children int, now time.Time) error {
	if r.Status == StatusCancelled {
		return ErrCancelledImmutable
	}
	if err := validateGuests(adults, children); err != nil {
		return err
	}
	r.Adults = adults
	r.Children = children
	r.UpdatedAt = now.UTC()
	return nil
}

// ChangeStatus moves the reservation to status. Cancelling records the reason.
func (r *Reservation) ChangeStatus(status Status, reason CancelReason, now time.Time) error {
	if r.Status == StatusCancelled {
		return ErrCancelledImmutable
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	if status == r.Status {
		return nil
	}
	r.Status = status
	r.UpdatedAt = now.UTC()
	if status == StatusCancelled {
		if reason == "" {
			reason = CancelUnknown
		}
		r.CancelReason = reason
		r.Record(ReservationCancelled{ReservationID: r.ID, OfferID: r.Offer, Reason: reason, At: r.UpdatedAt})
	}
	return nil
}

// MarkRemoved records the removal event; the repository performs the delete.
func (r *Reservation) MarkRemoved(now time.Time) {
	r.Record(ReservationRemoved{ReservationID: r.ID, OfferID: r.Offer, At: now.UTC()})
}

func validateGuests(adults, children int) error {
	if adults < 1 || adults > maxAdults {
		return ErrInvalidAdults
	}
	if children < 0 || children > maxChildren {
		return ErrInvalidChildren
	}
	return nil
}
