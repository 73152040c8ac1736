package reservations

import (
	"context"

	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/queries"
	"offerbook/internal/app/uow"
	domainbooking "offerbook/internal/domain/booking"
	domainoffers "offerbook/internal/domain/offers"
)

const (
	ListKey = "reservations.list"
	GetKey  = "reservations.get"
)

// ListQuery filters reservations. All filters combine; HostID expands to the
// host's offers.
type ListQuery struct {
	OfferID       string
	OccupantID    string
	HostID        string
	HideCancelled bool
}

func (q ListQuery) Key() string { return ListKey }

type ListHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHandler) Handle(ctx context.Context, q ListQuery) (dto.ReservationCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	defer support.Release(cleanup)

	filter := domainbooking.Filter{
		Occupant:         domainbooking.OccupantID(q.OccupantID),
		ExcludeCancelled: q.HideCancelled,
	}
	if q.OfferID != "" {
		filter.OfferIDs = []domainoffers.OfferID{domainoffers.OfferID(q.OfferID)}
	}
	if q.HostID != "" {
		owned, err := unit.Offers().IDsByHost(execCtx, domainoffers.HostID(q.HostID))
		if err != nil {
			return dto.ReservationCollection{}, err
		}
		filter.OfferIDs = intersectOffers(filter.OfferIDs, owned, q.OfferID != "")
		if len(filter.OfferIDs) == 0 {
			return dto.ReservationCollection{Items: []dto.Reservation{}}, nil
		}
	}

	list, err := unit.Reservations().Find(execCtx, filter)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	return dto.MapReservations(list), nil
}

func intersectOffers(requested, owned []domainoffers.OfferID, restricted bool) []domainoffers.OfferID {
	if !restricted {
		return owned
	}
	var out []domainoffers.OfferID
	for _, id := range requested {
		for _, o := range owned {
			if id == o {
				out = append(out, id)
			}
		}
	}
	return out
}

type GetQuery struct {
	ID string `validate:"required"`
}

func (q GetQuery) Key() string { return GetKey }

type GetHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetHandler) Handle(ctx context.Context, q GetQuery) (*dto.Reservation, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer support.Release(cleanup)

	reservation, err := unit.Reservations().ByID(execCtx, domainbooking.ReservationID(q.ID))
	if err != nil {
		return nil, err
	}
	out := dto.MapReservation(reservation)
	return &out, nil
}

var (
	_ queries.Handler[ListQuery, dto.ReservationCollection] = (*ListHandler)(nil)
	_ queries.Handler[GetQuery, *dto.Reservation]           = (*GetHandler)(nil)
)
