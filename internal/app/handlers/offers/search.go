package offers

import (
	"context"

	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/queries"
	"offerbook/internal/app/uow"
	"offerbook/internal/app/validation"
	domainbooking "offerbook/internal/domain/booking"
	"offerbook/internal/domain/geo"
	domainoffers "offerbook/internal/domain/offers"
	"offerbook/internal/domain/ranking"
	domainreviews "offerbook/internal/domain/reviews"
)

const SearchKey = "offers.search"

// SearchQuery ranks offers around an optional origin. Lat and Lon must be given
// together; CityID is used when they are absent or out of range.
type SearchQuery struct {
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	CityID string   `json:"cityId"`
	HostID string   `json:"hostId"`
	Status string   `json:"status"`
}

func (q SearchQuery) Key() string { return SearchKey }

func (q SearchQuery) Validate() error {
	if (q.Lat == nil) != (q.Lon == nil) {
		return &validation.Error{Fields: []validation.FieldError{
			{Field: "lat", Message: "lat and lon must be given together"},
			{Field: "lon", Message: "lat and lon must be given together"},
		}}
	}
	return nil
}

type SearchHandler struct {
	UoWFactory uow.UoWFactory
	Observer   ranking.DurationObserver
}

func (h *SearchHandler) Handle(ctx context.Context, q SearchQuery) (dto.RankedOfferCollection, error) {
	params := domainoffers.SearchParams{Host: domainoffers.HostID(q.HostID)}
	if q.Status != "" {
		status, err := domainoffers.ParseStatus(q.Status)
		if err != nil {
			return dto.RankedOfferCollection{}, validation.Wrap("status", err)
		}
		params.Status = status
	}

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RankedOfferCollection{}, err
	}
	defer support.Release(cleanup)

	found, err := unit.Offers().Search(execCtx, params.Normalized())
	if err != nil {
		return dto.RankedOfferCollection{}, err
	}
	if len(found) == 0 {
		return dto.RankedOfferCollection{Items: []dto.RankedOffer{}}, nil
	}

	stats, err := reviewStats(execCtx, unit, found)
	if err != nil {
		return dto.RankedOfferCollection{}, err
	}
	cands := make([]ranking.Candidate, 0, len(found))
	for _, o := range found {
		st := stats[o.ID]
		cands = append(cands, ranking.Candidate{Offer: o, AverageRating: st.Average, ReviewCount: st.Count})
	}

	var origin ranking.Origin
	if q.Lat != nil && q.Lon != nil {
		origin.Coordinates = &geo.Coordinate{Lat: *q.Lat, Lon: *q.Lon}
	}
	if q.CityID != "" {
		city := domainoffers.CityID(q.CityID)
		origin.City = &city
	}
	ranked, err := ranking.NewOrchestrator(unit.Locations(), h.Observer).Rank(execCtx, cands, origin)
	if err != nil {
		return dto.RankedOfferCollection{}, err
	}
	return dto.MapRanked(ranked), nil
}

// reviewStats summarizes the reviews of offers, counting only reviews whose
// reservation is still active.
func reviewStats(ctx context.Context, unit uow.UnitOfWork, list []*domainoffers.Offer) (map[domainoffers.OfferID]domainreviews.Stats, error) {
	ids := make([]domainoffers.OfferID, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	active, err := unit.Reservations().Find(ctx, domainbooking.Filter{OfferIDs: ids, ExcludeCancelled: true})
	if err != nil {
		return nil, err
	}
	activeSet := make(map[domainbooking.ReservationID]struct{}, len(active))
	for _, r := range active {
		activeSet[r.ID] = struct{}{}
	}
	reviews, err := unit.Reviews().ListByOffers(ctx, ids)
	if err != nil {
		return nil, err
	}
	return domainreviews.Summarize(reviews, activeSet), nil
}

var _ queries.Handler[SearchQuery, dto.RankedOfferCollection] = (*SearchHandler)(nil)
