package places

import (
	"context"

	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/queries"
	"offerbook/internal/app/uow"
	domainlocations "offerbook/internal/domain/locations"
)

const SearchKey = "places.search"

// SearchQuery looks cities up by name prefix. Limit 0 returns every match.
type SearchQuery struct {
	Name  string `json:"name"`
	Order string `json:"order" validate:"omitempty,oneof=population name"`
	Limit int    `json:"limit" validate:"min=0,max=100"`
}

func (q SearchQuery) Key() string { return SearchKey }

type SearchHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchHandler) Handle(ctx context.Context, q SearchQuery) (dto.PlaceCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PlaceCollection{}, err
	}
	defer support.Release(cleanup)

	list, err := unit.Locations().SearchByName(execCtx, q.Name, domainlocations.ParseOrder(q.Order), q.Limit)
	if err != nil {
		return dto.PlaceCollection{}, err
	}
	return dto.MapPlaces(list), nil
}

var _ queries.Handler[SearchQuery, dto.PlaceCollection] = (*SearchHandler)(nil)
