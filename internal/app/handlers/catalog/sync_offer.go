// Package catalog mirrors offers owned by the catalog service into local
// reference data.
package catalog

import (
	"context"
	"errors"
	"time"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/validation"
	"offerbook/internal/domain/geo"
	domainoffers "offerbook/internal/domain/offers"
)

const SyncOfferKey = "catalog.sync_offer"

type SyncOfferCommand struct {
	OfferID    string    `json:"id" validate:"required"`
	HostID     string    `json:"hostId" validate:"required"`
	CityID     string    `json:"cityId"`
	Title      string    `json:"title" validate:"required,max=300"`
	Latitude   *float64  `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude  *float64  `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"-"`
}

func (c SyncOfferCommand) Key() string { return SyncOfferKey }

func (c SyncOfferCommand) Validate() error {
	if (c.Latitude == nil) != (c.Longitude == nil) {
		return &validation.Error{Fields: []validation.FieldError{
			{Field: "latitude", Message: "latitude and longitude must be given together"},
			{Field: "longitude", Message: "latitude and longitude must be given together"},
		}}
	}
	return nil
}

type SyncOfferResult struct {
	Applied bool `json:"applied"`
}

// SyncOfferHandler upserts the offer unless the stored copy is as recent as
// the event. Events without a timestamp are stamped with the clock.
type SyncOfferHandler struct {
	Clock func() time.Time
}

func (h *SyncOfferHandler) Handle(ctx context.Context, cmd SyncOfferCommand) (SyncOfferResult, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return SyncOfferResult{}, err
	}
	at := cmd.OccurredAt.UTC()
	if at.IsZero() {
		at = support.Now(h.Clock)
	}

	existing, err := unit.Offers().ByID(ctx, domainoffers.OfferID(cmd.OfferID))
	if err != nil && !errors.Is(err, domainoffers.ErrOfferNotFound) {
		return SyncOfferResult{}, err
	}
	if existing != nil && !at.After(existing.UpdatedAt) {
		return SyncOfferResult{}, nil
	}

	status := domainoffers.StatusWaitingApproval
	if cmd.Status != "" {
		if status, err = domainoffers.ParseStatus(cmd.Status); err != nil {
			return SyncOfferResult{}, validation.Wrap("status", err)
		}
	}
	var coords *geo.Coordinate
	if cmd.Latitude != nil {
		coords = &geo.Coordinate{Lat: *cmd.Latitude, Lon: *cmd.Longitude}
	}

	offer, err := domainoffers.NewOffer(domainoffers.CreateParams{
		ID:          domainoffers.OfferID(cmd.OfferID),
		Host:        domainoffers.HostID(cmd.HostID),
		City:        domainoffers.CityID(cmd.CityID),
		Title:       cmd.Title,
		Coordinates: coords,
		Status:      status,
		Now:         at,
	})
	if err != nil {
		return SyncOfferResult{}, err
	}
	if existing != nil {
		offer.CreatedAt = existing.CreatedAt
	}
	if err := unit.Offers().Save(ctx, offer); err != nil {
		return SyncOfferResult{}, err
	}
	return SyncOfferResult{Applied: true}, nil
}

var _ commands.Handler[SyncOfferCommand, SyncOfferResult] = (*SyncOfferHandler)(nil)
