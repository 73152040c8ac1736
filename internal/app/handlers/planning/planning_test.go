package planning_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/planning"
	"offerbook/internal/app/handlers/reservations"
	"offerbook/internal/app/queries"
	"offerbook/internal/app/validation"
	"offerbook/internal/app/wiring/wiringtest"
	domainavailability "offerbook/internal/domain/availability"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
)

func add(h *wiringtest.Harness, offer, host string, from, to int) (*dto.Blackout, error) {
	return commands.Dispatch[planning.AddCommand, *dto.Blackout](context.Background(), h.Commands, planning.AddCommand{
		OfferID:   offer,
		HostID:    host,
		Name:      "maintenance",
		StartDate: wiringtest.Day(from),
		EndDate:   wiringtest.Day(to),
	})
}

func reserve(h *wiringtest.Harness, offer string, from, to int) error {
	_, err := commands.Dispatch[reservations.CreateCommand, *dto.Reservation](context.Background(), h.Commands, reservations.CreateCommand{
		OfferID: offer, OccupantID: "guest", StartDate: wiringtest.Day(from), EndDate: wiringtest.Day(to), Adults: 1,
	})
	return err
}

func TestAddRequiresExactlyOneScope(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)

	for _, tc := range []struct{ offer, host string }{{"", ""}, {"O1", "H"}} {
		_, err := add(h, tc.offer, tc.host, 1, 3)
		var verr *validation.Error
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 2)
	}

	_, err := add(h, "missing", "", 1, 3)
	require.ErrorIs(t, err, domainoffers.ErrOfferNotFound)
	_, err = add(h, "", "nobody", 1, 3)
	require.ErrorIs(t, err, domainoffers.ErrHostNotFound)
}

func TestHostBlackoutBlocksEveryOffer(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)
	h.Offer(t, "O2", "H", "", nil)
	h.Offer(t, "X1", "Other", "", nil)

	entry, err := add(h, "", "H", 10, 15)
	require.NoError(t, err)
	require.Equal(t, "H", entry.HostID)
	require.Empty(t, entry.OfferID)

	require.ErrorIs(t, reserve(h, "O1", 12, 13), domainavailability.ErrSchedulingConflict)
	require.ErrorIs(t, reserve(h, "O2", 9, 11), domainavailability.ErrSchedulingConflict)
	require.NoError(t, reserve(h, "X1", 12, 13))
	require.NoError(t, reserve(h, "O1", 15, 17))
}

func TestHostBlackoutRejectedOverExistingReservation(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)
	h.Offer(t, "O2", "H", "", nil)
	require.NoError(t, reserve(h, "O2", 3, 5))

	_, err := add(h, "", "H", 1, 4)
	require.ErrorIs(t, err, domainavailability.ErrSchedulingConflict)

	// an offer blackout on a sibling does not see O2's stay
	_, err = add(h, "O1", "", 1, 4)
	require.NoError(t, err)

	_, err = add(h, "", "H", 2, 3)
	require.ErrorIs(t, err, domainavailability.ErrSchedulingConflict, "offer entry of O1 blocks the host entry")
}

func TestUpdateAndRemoveBlackout(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)
	entry, err := add(h, "O1", "", 1, 3)
	require.NoError(t, err)
	require.NoError(t, reserve(h, "O1", 5, 7))

	name := "renovation"
	got, err := commands.Dispatch[planning.UpdateCommand, *dto.Blackout](context.Background(), h.Commands, planning.UpdateCommand{
		ID: entry.ID, Name: &name, EndDate: ptr(wiringtest.Day(4)),
	})
	require.NoError(t, err)
	require.Equal(t, "renovation", got.Name)
	require.Equal(t, wiringtest.Day(4), got.EndDate)

	_, err = commands.Dispatch[planning.UpdateCommand, *dto.Blackout](context.Background(), h.Commands, planning.UpdateCommand{
		ID: entry.ID, EndDate: ptr(wiringtest.Day(6)),
	})
	require.ErrorIs(t, err, domainavailability.ErrSchedulingConflict)

	res, err := commands.Dispatch[planning.RemoveCommand, *planning.RemoveResult](context.Background(), h.Commands, planning.RemoveCommand{ID: entry.ID})
	require.NoError(t, err)
	require.True(t, res.Removed)
	_, err = h.Planning.ByID(context.Background(), domainplanning.EntryID(entry.ID))
	require.ErrorIs(t, err, domainplanning.ErrEntryNotFound)
	require.NoError(t, reserve(h, "O1", 1, 3))
}

func TestListSeparatesScopes(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)
	_, err := add(h, "O1", "", 1, 3)
	require.NoError(t, err)
	_, err = add(h, "", "H", 5, 7)
	require.NoError(t, err)

	byOffer, err := queries.Ask[planning.ListQuery, dto.BlackoutCollection](context.Background(), h.Queries, planning.ListQuery{OfferID: "O1"})
	require.NoError(t, err)
	require.Len(t, byOffer.Items, 1)
	require.Equal(t, "O1", byOffer.Items[0].OfferID)

	byHost, err := queries.Ask[planning.ListQuery, dto.BlackoutCollection](context.Background(), h.Queries, planning.ListQuery{HostID: "H"})
	require.NoError(t, err)
	require.Len(t, byHost.Items, 1)
	require.Equal(t, "H", byHost.Items[0].HostID)
}

func ptr[T any](v T) *T { return &v }
