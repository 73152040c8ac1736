package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainbooking "offerbook/internal/domain/booking"
	domainlocations "offerbook/internal/domain/locations"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
	domainreviews "offerbook/internal/domain/reviews"
	"offerbook/internal/domain/shared/events"
)

// OfferRepository keeps offers in memory.
type OfferRepository struct {
	mu    sync.RWMutex
	items map[domainoffers.OfferID]*domainoffers.Offer
	order []domainoffers.OfferID
}

func NewOfferRepository() *OfferRepository {
	return &OfferRepository{items: make(map[domainoffers.OfferID]*domainoffers.Offer)}
}

func (r *OfferRepository) ByID(ctx context.Context, id domainoffers.OfferID) (*domainoffers.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	offer, ok := r.items[id]
	if !ok {
		return nil, domainoffers.ErrOfferNotFound
	}
	cp := *offer
	return &cp, nil
}

func (r *OfferRepository) IDsByHost(ctx context.Context, host domainoffers.HostID) ([]domainoffers.OfferID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []domainoffers.OfferID
	for _, id := range r.order {
		if r.items[id].Host == host {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *OfferRepository) HostExists(ctx context.Context, host domainoffers.HostID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, offer := range r.items {
		if offer.Host == host {
			return true, nil
		}
	}
	return false, nil
}

// Search returns matching offers in insertion order.
func (r *OfferRepository) Search(ctx context.Context, params domainoffers.SearchParams) ([]*domainoffers.Offer, error) {
	params = params.Normalized()
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainoffers.Offer
	for _, id := range r.order {
		offer := r.items[id]
		if !params.Matches(offer) {
			continue
		}
		cp := *offer
		out = append(out, &cp)
	}
	return out, nil
}

func (r *OfferRepository) Save(ctx context.Context, offer *domainoffers.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[offer.ID]; !ok {
		r.order = append(r.order, offer.ID)
	}
	cp := *offer
	r.items[offer.ID] = &cp
	return nil
}

// LocationRepository keeps reference cities in memory.
type LocationRepository struct {
	mu    sync.RWMutex
	items map[domainoffers.CityID]*domainlocations.City
}

func NewLocationRepository() *LocationRepository {
	return &LocationRepository{items: make(map[domainoffers.CityID]*domainlocations.City)}
}

func (r *LocationRepository) ByID(ctx context.Context, id domainoffers.CityID) (*domainlocations.City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	city, ok := r.items[id]
	if !ok {
		return nil, domainlocations.ErrLocationNotFound
	}
	cp := *city
	return &cp, nil
}

func (r *LocationRepository) SearchByName(ctx context.Context, prefix string, order domainlocations.Order, limit int) ([]*domainlocations.City, error) {
	r.mu.RLock()
	var out []*domainlocations.City
	for _, city := range r.items {
		if city.MatchesPrefix(prefix) {
			cp := *city
			out = append(out, &cp)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if order == domainlocations.OrderByName {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		}
		if out[i].Population == out[j].Population {
			return out[i].Name < out[j].Name
		}
		return out[i].Population > out[j].Population
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *LocationRepository) Save(ctx context.Context, city *domainlocations.City) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *city
	r.items[city.ID] = &cp
	return nil
}

// ReservationRepository stores reservations in memory.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ReservationID]*domainbooking.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[domainbooking.ReservationID]*domainbooking.Reservation)}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainbooking.ReservationID) (*domainbooking.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrReservationNotFound
	}
	return cloneReservation(item), nil
}

// Find returns matches ordered by start date.
func (r *ReservationRepository) Find(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Reservation, error) {
	r.mu.RLock()
	var out []*domainbooking.Reservation
	for _, item := range r.items {
		if filter.Matches(item) {
			out = append(out, cloneReservation(item))
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Range.Start.Equal(out[j].Range.Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Range.Start.Before(out[j].Range.Start)
	})
	return out, nil
}

func (r *ReservationRepository) Save(ctx context.Context, reservation *domainbooking.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reservation.Version++
	r.items[reservation.ID] = cloneReservation(reservation)
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id domainbooking.ReservationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrReservationNotFound
	}
	delete(r.items, id)
	return nil
}

func cloneReservation(src *domainbooking.Reservation) *domainbooking.Reservation {
	cp := *src
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}

// PlanningRepository stores blackout entries in memory.
type PlanningRepository struct {
	mu    sync.RWMutex
	items map[domainplanning.EntryID]*domainplanning.Entry
}

func NewPlanningRepository() *PlanningRepository {
	return &PlanningRepository{items: make(map[domainplanning.EntryID]*domainplanning.Entry)}
}

func (r *PlanningRepository) ByID(ctx context.Context, id domainplanning.EntryID) (*domainplanning.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, domainplanning.ErrEntryNotFound
	}
	return cloneEntry(item), nil
}

func (r *PlanningRepository) Find(ctx context.Context, filter domainplanning.Filter) ([]*domainplanning.Entry, error) {
	r.mu.RLock()
	var out []*domainplanning.Entry
	for _, item := range r.items {
		if filter.Matches(item) {
			out = append(out, cloneEntry(item))
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Range.Start.Equal(out[j].Range.Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Range.Start.Before(out[j].Range.Start)
	})
	return out, nil
}

func (r *PlanningRepository) Save(ctx context.Context, entry *domainplanning.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[entry.ID] = cloneEntry(entry)
	return nil
}

func (r *PlanningRepository) Delete(ctx context.Context, id domainplanning.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainplanning.ErrEntryNotFound
	}
	delete(r.items, id)
	return nil
}

func cloneEntry(src *domainplanning.Entry) *domainplanning.Entry {
	cp := *src
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}

// ReviewsRepository is a lightweight in-memory review store.
type ReviewsRepository struct {
	mu    sync.RWMutex
	items map[domainreviews.ReviewID]*domainreviews.Review
}

func NewReviewsRepository() *ReviewsRepository {
	return &ReviewsRepository{items: make(map[domainreviews.ReviewID]*domainreviews.Review)}
}

func (r *ReviewsRepository) ListByOffers(ctx context.Context, ids []domainoffers.OfferID) ([]*domainreviews.Review, error) {
	wanted := make(map[domainoffers.OfferID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainreviews.Review
	for _, review := range r.items {
		if _, ok := wanted[review.Offer]; ok {
			cp := *review
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ReviewsRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *review
	r.items[review.ID] = &cp
	return nil
}

var (
	_ domainoffers.Repository    = (*OfferRepository)(nil)
	_ domainlocations.Repository = (*LocationRepository)(nil)
	_ domainbooking.Repository   = (*ReservationRepository)(nil)
	_ domainplanning.Repository  = (*PlanningRepository)(nil)
	_ domainreviews.Repository   = (*ReviewsRepository)(nil)
)
