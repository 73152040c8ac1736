package dto

import (
	"offerbook/internal/domain/geo"
	domainlocations "offerbook/internal/domain/locations"
	"offerbook/internal/domain/ranking"
)

type RankedOffer struct {
	ID            string          `json:"id"`
	HostID        string          `json:"hostId"`
	CityID        string          `json:"cityId,omitempty"`
	Title         string          `json:"title"`
	Status        string          `json:"status"`
	Coordinates   *geo.Coordinate `json:"coordinates,omitempty"`
	Distance      *float64        `json:"distance,omitempty"`
	AverageRating *float64        `json:"averageRating,omitempty"`
	ReviewCount   int             `json:"reviewCount"`
	SortScore     float64         `json:"sortScore"`
}

type RankedOfferCollection struct {
	Items       []RankedOffer `json:"items"`
	UseDistance bool          `json:"useDistance"`
}

func MapRanked(list []ranking.Candidate) RankedOfferCollection {
	out := RankedOfferCollection{Items: make([]RankedOffer, 0, len(list))}
	for _, c := range list {
		if c.Offer == nil {
			continue
		}
		if c.Distance != nil {
			out.UseDistance = true
		}
		out.Items = append(out.Items, RankedOffer{
			ID:            string(c.Offer.ID),
			HostID:        string(c.Offer.Host),
			CityID:        string(c.Offer.City),
			Title:         c.Offer.Title,
			Status:        string(c.Offer.Status),
			Coordinates:   c.Offer.Coordinates,
			Distance:      c.Distance,
			AverageRating: c.AverageRating,
			ReviewCount:   c.ReviewCount,
			SortScore:     c.SortScore,
		})
	}
	return out
}

type Place struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Department  string         `json:"department,omitempty"`
	Population  int            `json:"population"`
	Coordinates geo.Coordinate `json:"coordinates"`
}

type PlaceCollection struct {
	Items []Place `json:"items"`
}

func MapPlaces(list []*domainlocations.City) PlaceCollection {
	out := PlaceCollection{Items: make([]Place, 0, len(list))}
	for _, c := range list {
		out.Items = append(out.Items, Place{
			ID:          string(c.ID),
			Name:        c.Name,
			Department:  c.Department,
			Population:  c.Population,
			Coordinates: c.Coordinates,
		})
	}
	return out
}
