package dto

import (
	"time"

	domainplanning "offerbook/internal/domain/planning"
)

type Blackout struct {
	ID          string    `json:"id"`
	OfferID     string    `json:"offerId,omitempty"`
	HostID      string    `json:"hostId,omitempty"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type BlackoutCollection struct {
	Items []Blackout `json:"items"`
}

func MapBlackout(e *domainplanning.Entry) Blackout {
	if e == nil {
		return Blackout{}
	}
	out := Blackout{
		ID:          string(e.ID),
		Name:        e.Name,
		Description: e.Description,
		StartDate:   e.Range.Start,
		EndDate:     e.Range.End,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	switch s := e.Scope.(type) {
	case domainplanning.OfferScope:
		out.OfferID = string(s.Offer)
	case domainplanning.HostScope:
		out.HostID = string(s.Host)
	}
	return out
}

func MapBlackouts(list []*domainplanning.Entry) BlackoutCollection {
	items := make([]Blackout, 0, len(list))
	for _, e := range list {
		items = append(items, MapBlackout(e))
	}
	return BlackoutCollection{Items: items}
}
