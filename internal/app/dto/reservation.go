package dto

import (
	"time"

	domainbooking "offerbook/internal/domain/booking"
)

type Reservation struct {
	ID           string    `json:"id"`
	OfferID      string    `json:"offerId"`
	OccupantID   string    `json:"occupantId"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Adults       int       `json:"adults"`
	Children     int       `json:"children"`
	Status       string    `json:"status"`
	CancelReason string    `json:"cancelReason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ReservationCollection struct {
	Items []Reservation `json:"items"`
}

// MapReservation builds a DTO from a domain reservation.
func MapReservation(r *domainbooking.Reservation) Reservation {
	if r == nil {
		return Reservation{}
	}
	out := Reservation{
		ID:         string(r.ID),
		OfferID:    string(r.Offer),
		OccupantID: string(r.Occupant),
		StartDate:  r.Range.Start,
		EndDate:    r.Range.End,
		Adults:     r.Adults,
		Children:   r.Children,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.Status == domainbooking.StatusCancelled {
		out.CancelReason = string(r.CancelReason)
	}
	return out
}

func MapReservations(list []*domainbooking.Reservation) ReservationCollection {
	items := make([]Reservation, 0, len(list))
	for _, r := range list {
		items = append(items, MapReservation(r))
	}
	return ReservationCollection{Items: items}
}
