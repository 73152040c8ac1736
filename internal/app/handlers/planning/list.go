package planning

import (
	"context"

	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/queries"
	"offerbook/internal/app/uow"
	"offerbook/internal/app/validation"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
)

const ListKey = "planning.list"

// ListQuery lists the entries attached directly to an offer or to a host.
// A host listing does not include the entries of the host's offers.
type ListQuery struct {
	OfferID string
	HostID  string
}

func (q ListQuery) Key() string { return ListKey }

type ListHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHandler) Handle(ctx context.Context, q ListQuery) (dto.BlackoutCollection, error) {
	scope, err := domainplanning.NewScope(domainoffers.OfferID(q.OfferID), domainoffers.HostID(q.HostID))
	if err != nil {
		return dto.BlackoutCollection{}, validation.Field("offerId", err.Error())
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BlackoutCollection{}, err
	}
	defer support.Release(cleanup)

	var filter domainplanning.Filter
	switch s := scope.(type) {
	case domainplanning.OfferScope:
		filter.OfferIDs = []domainoffers.OfferID{s.Offer}
	case domainplanning.HostScope:
		filter.HostID = s.Host
	}
	list, err := unit.Planning().Find(execCtx, filter)
	if err != nil {
		return dto.BlackoutCollection{}, err
	}
	return dto.MapBlackouts(list), nil
}

var _ queries.Handler[ListQuery, dto.BlackoutCollection] = (*ListHandler)(nil)
