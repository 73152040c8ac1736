package offers

import (
	"context"
	"errors"
	"strings"
	"time"

	"offerbook/internal/domain/geo"
)

var (
	ErrOfferNotFound      = errors.New("offers: offer not found")
	ErrHostNotFound       = errors.New("offers: host not found")
	ErrTitleRequired      = errors.New("offers: title is required")
	ErrInvalidCoordinates = errors.New("offers: coordinates out of range")
	ErrUnknownStatus      = errors.New("offers: unknown status")
)

type OfferID string
type HostID string
type CityID string

type Status string

const (
	StatusWaitingApproval     Status = "WAITING_APPROVAL"
	StatusModificationsNeeded Status = "MODIFICATIONS_NEEDED"
	StatusRejected            Status = "REJECTED"
	StatusAvailable           Status = "AVAILABLE"
	StatusDisabled            Status = "DISABLED"
	StatusDeleted             Status = "DELETED"
)

// ParseStatus accepts the canonical upper-case names.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusWaitingApproval, StatusModificationsNeeded, StatusRejected,
		StatusAvailable, StatusDisabled, StatusDeleted:
		return s, nil
	}
	return "", ErrUnknownStatus
}

// Searchable reports whether offers in this status may appear in search results.
func (s Status) Searchable() bool {
	switch s {
	case StatusAvailable:
		return true
	case StatusWaitingApproval, StatusModificationsNeeded, StatusRejected, StatusDisabled, StatusDeleted:
		return false
	}
	return false
}

// Offer is the bookable place. It is reference data for this service: created
// by the catalog side and only read by availability and search.
type Offer struct {
	ID          OfferID
	Host        HostID
	City        CityID
	Title       string
	Coordinates *geo.Coordinate
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository interface {
	ByID(ctx context.Context, id OfferID) (*Offer, error)
	IDsByHost(ctx context.Context, host HostID) ([]OfferID, error)
	HostExists(ctx context.Context, host HostID) (bool, error)
	Search(ctx context.Context, params SearchParams) ([]*Offer, error)
	Save(ctx context.Context, offer *Offer) error
}

// SearchParams filter the candidate set fed to ranking.
type SearchParams struct {
	Host   HostID
	Status Status
}

// Normalized defaults Status to AVAILABLE.
func (p SearchParams) Normalized() SearchParams {
	out := p
	out.Host = HostID(strings.TrimSpace(string(out.Host)))
	if out.Status == "" {
		out.Status = StatusAvailable
	}
	return out
}

// Matches applies params to a single offer; used by stores without a query engine.
func (p SearchParams) Matches(o *Offer) bool {
	if o == nil {
		return false
	}
	if p.Host != "" && o.Host != p.Host {
		return false
	}
	return p.Status == "" || o.Status == p.Status
}

type CreateParams struct {
	ID          OfferID
	Host        HostID
	City        CityID
	Title       string
	Coordinates *geo.Coordinate
	Status      Status
	Now         time.Time
}

func NewOffer(params CreateParams) (*Offer, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("offers: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, errors.New("offers: host is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.Coordinates != nil && !params.Coordinates.Valid() {
		return nil, ErrInvalidCoordinates
	}
	status := params.Status
	if status == "" {
		status = StatusWaitingApproval
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	var coords *geo.Coordinate
	if params.Coordinates != nil {
		c := *params.Coordinates
		coords = &c
	}
	now := params.Now.UTC()
	return &Offer{
		ID:          params.ID,
		Host:        params.Host,
		City:        params.City,
		Title:       strings.TrimSpace(params.Title),
		Coordinates: coords,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
