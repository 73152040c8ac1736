package booking

import (
	"time"

	"offerbook/internal/domain/offers"
	"offerbook/internal/domain/shared/daterange"
)

type ReservationRequested struct {
	ReservationID ReservationID
	OfferID       offers.OfferID
	OccupantID    OccupantID
	Range         daterange.DateRange
	Status        Status
	At            time.Time
}

func (e ReservationRequested) EventName() string     { return "reservation.requested" }
func (e ReservationRequested) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationRequested) OccurredAt() time.Time { return e.At }

type ReservationRescheduled struct {
	ReservationID ReservationID
	OfferID       offers.OfferID
	Previous      daterange.DateRange
	Range         daterange.DateRange
	At            time.Time
}

func (e ReservationRescheduled) EventName() string     { return "reservation.rescheduled" }
func (e ReservationRescheduled) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationRescheduled) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	ReservationID ReservationID
	OfferID       offers.OfferID
	Reason        CancelReason
	At            time.Time
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }

type ReservationRemoved struct {
	ReservationID ReservationID
	OfferID       offers.OfferID
	At            time.Time
}

func (e ReservationRemoved) EventName() string     { return "reservation.removed" }
func (e ReservationRemoved) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationRemoved) OccurredAt() time.Time { return e.At }
