// Package wiringtest builds fully wired in-memory buses for handler tests.
package wiringtest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/wiring"
	"offerbook/internal/domain/geo"
	domainlocations "offerbook/internal/domain/locations"
	domainoffers "offerbook/internal/domain/offers"
	"offerbook/internal/infra/lock"
	"offerbook/internal/infra/storage/memory"
)

// Now is the fixed clock every harness runs on.
var Now = time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)

type Harness struct {
	Offers       *memory.OfferRepository
	Locations    *memory.LocationRepository
	Reservations *memory.ReservationRepository
	Planning     *memory.PlanningRepository
	Reviews      *memory.ReviewsRepository
	Outbox       *memory.Outbox
	Factory      memory.Factory
	wiring.Buses
}

func New(t testing.TB) *Harness {
	t.Helper()
	h := &Harness{
		Offers:       memory.NewOfferRepository(),
		Locations:    memory.NewLocationRepository(),
		Reservations: memory.NewReservationRepository(),
		Planning:     memory.NewPlanningRepository(),
		Reviews:      memory.NewReviewsRepository(),
		Outbox:       memory.NewOutbox(),
	}
	h.Factory = memory.Factory{
		OffersRepo:       h.Offers,
		LocationsRepo:    h.Locations,
		ReservationsRepo: h.Reservations,
		PlanningRepo:     h.Planning,
		ReviewsRepo:      h.Reviews,
	}
	h.Buses = wiring.Build(wiring.Deps{
		UoW:            h.Factory,
		Outbox:         h.Outbox,
		Idempotency:    memory.NewIdempotencyStore(),
		IdempotencyTTL: time.Hour,
		Locker:         lock.NewKeyed(nil),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:          func() time.Time { return Now },
		Source:         "offerbook-test",
	})
	return h
}

// Day returns midnight UTC n days after Now.
func Day(n int) time.Time {
	y, m, d := Now.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, time.UTC)
}

// Offer stores an available offer.
func (h *Harness) Offer(t testing.TB, id, host, city string, coords *geo.Coordinate) *domainoffers.Offer {
	t.Helper()
	o, err := domainoffers.NewOffer(domainoffers.CreateParams{
		ID:          domainoffers.OfferID(id),
		Host:        domainoffers.HostID(host),
		City:        domainoffers.CityID(city),
		Title:       "Offer " + id,
		Coordinates: coords,
		Status:      domainoffers.StatusAvailable,
		Now:         Now,
	})
	require.NoError(t, err)
	require.NoError(t, h.Offers.Save(context.Background(), o))
	return o
}

func (h *Harness) City(t testing.TB, id, name string, population int, at geo.Coordinate) {
	t.Helper()
	require.NoError(t, h.Locations.Save(context.Background(), &domainlocations.City{
		ID:          domainoffers.CityID(id),
		Name:        name,
		Population:  population,
		Coordinates: at,
	}))
}
