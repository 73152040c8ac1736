package availability_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/availability"
	"offerbook/internal/app/handlers/catalog"
	"offerbook/internal/app/handlers/planning"
	"offerbook/internal/app/handlers/reservations"
	"offerbook/internal/app/queries"
	"offerbook/internal/app/wiring/wiringtest"
	domainavailability "offerbook/internal/domain/availability"
	domainbooking "offerbook/internal/domain/booking"
)

func reserve(h *wiringtest.Harness, offer string, from, to int) (*dto.Reservation, error) {
	return commands.Dispatch[reservations.CreateCommand, *dto.Reservation](context.Background(), h.Commands, reservations.CreateCommand{
		OfferID: offer, OccupantID: "guest", StartDate: wiringtest.Day(from), EndDate: wiringtest.Day(to), Adults: 1,
	})
}

func check(t *testing.T, h *wiringtest.Harness, q availability.CheckQuery) dto.Availability {
	t.Helper()
	out, err := queries.Ask[availability.CheckQuery, dto.Availability](context.Background(), h.Queries, q)
	require.NoError(t, err)
	return out
}

func TestCheckQuery(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)
	r, err := reserve(h, "O1", 2, 5)
	require.NoError(t, err)
	_, err = commands.Dispatch[planning.AddCommand, *dto.Blackout](context.Background(), h.Commands, planning.AddCommand{
		HostID: "H", StartDate: wiringtest.Day(4), EndDate: wiringtest.Day(6),
	})
	require.ErrorIs(t, err, domainavailability.ErrSchedulingConflict)

	free := check(t, h, availability.CheckQuery{OfferID: "O1", StartDate: wiringtest.Day(5), EndDate: wiringtest.Day(8)})
	require.True(t, free.Available)
	require.Empty(t, free.Errors)

	busy := check(t, h, availability.CheckQuery{OfferID: "O1", StartDate: wiringtest.Day(1), EndDate: wiringtest.Day(3)})
	require.False(t, busy.Available)
	require.Len(t, busy.Conflicts, 1)
	require.Equal(t, string(domainavailability.ConflictReservation), busy.Conflicts[0].Kind)
	require.Len(t, busy.Errors, 2)
	require.Equal(t, domainavailability.UnavailableMessage, busy.Errors[0].Message)

	self := check(t, h, availability.CheckQuery{OfferID: "O1", StartDate: wiringtest.Day(1), EndDate: wiringtest.Day(3), ExcludeReservationID: r.ID})
	require.True(t, self.Available)
}

func TestLockKeys(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O2", "H", "", nil)
	h.Offer(t, "O1", "H", "", nil)
	r, err := reserve(h, "O1", 1, 2)
	require.NoError(t, err)
	entry, err := commands.Dispatch[planning.AddCommand, *dto.Blackout](context.Background(), h.Commands, planning.AddCommand{
		HostID: "H", StartDate: wiringtest.Day(5), EndDate: wiringtest.Day(6),
	})
	require.NoError(t, err)

	keysFor := availability.LockKeys(h.Factory)
	ctx := context.Background()
	for _, tc := range []struct {
		name string
		cmd  commands.Command
		want []string
	}{
		{"create", reservations.CreateCommand{OfferID: "O1"}, []string{"offer:O1"}},
		{"update reservation", reservations.UpdateCommand{ID: r.ID}, []string{"offer:O1"}},
		{"delete reservation", reservations.DeleteCommand{ID: r.ID}, nil},
		{"offer blackout", planning.AddCommand{OfferID: "O2"}, []string{"offer:O2"}},
		{"host blackout", planning.AddCommand{HostID: "H"}, []string{"host:H", "offer:O1", "offer:O2"}},
		{"update host blackout", planning.UpdateCommand{ID: entry.ID}, []string{"host:H", "offer:O1", "offer:O2"}},
		{"bad scope", planning.AddCommand{}, nil},
		{"sync new offer", catalog.SyncOfferCommand{OfferID: "O9", HostID: "H2"}, []string{"offer:O9", "host:H2"}},
		{"sync host move", catalog.SyncOfferCommand{OfferID: "O1", HostID: "H2"}, []string{"offer:O1", "host:H2", "host:H"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := keysFor(ctx, tc.cmd)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err = keysFor(ctx, reservations.UpdateCommand{ID: "missing"})
	require.ErrorIs(t, err, domainbooking.ErrReservationNotFound)
}

func TestConcurrentOverlappingCreatesAdmitOne(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// every range covers day 10
			_, errs[i] = reserve(h, "O1", 10-i%3, 11+i%4)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domainavailability.ErrSchedulingConflict)
	}
	require.Equal(t, 1, succeeded)
	list, err := h.Reservations.Find(context.Background(), domainbooking.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestConcurrentHostBlackoutAndReservation(t *testing.T) {
	for round := 0; round < 20; round++ {
		h := wiringtest.New(t)
		h.Offer(t, "O1", "H", "", nil)
		h.Offer(t, "O2", "H", "", nil)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = reserve(h, "O2", 3, 6)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = commands.Dispatch[planning.AddCommand, *dto.Blackout](context.Background(), h.Commands, planning.AddCommand{
				HostID: "H", StartDate: wiringtest.Day(4), EndDate: wiringtest.Day(5),
			})
		}()
		wg.Wait()

		failed := 0
		for _, err := range errs {
			if err != nil {
				require.ErrorIs(t, err, domainavailability.ErrSchedulingConflict)
				failed++
			}
		}
		require.Equal(t, 1, failed)
	}
}
