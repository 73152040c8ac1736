package reservations_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/dto"
	"offerbook/internal/app/handlers/reservations"
	"offerbook/internal/app/queries"
	"offerbook/internal/app/validation"
	"offerbook/internal/app/wiring/wiringtest"
	domainavailability "offerbook/internal/domain/availability"
	domainbooking "offerbook/internal/domain/booking"
	domainoffers "offerbook/internal/domain/offers"
)

func create(t *testing.T, h *wiringtest.Harness, offer string, from, to int) (*dto.Reservation, error) {
	t.Helper()
	return commands.Dispatch[reservations.CreateCommand, *dto.Reservation](context.Background(), h.Commands, reservations.CreateCommand{
		OfferID:    offer,
		OccupantID: "guest",
		StartDate:  wiringtest.Day(from),
		EndDate:    wiringtest.Day(to),
		Adults:     2,
	})
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verr *validation.Error
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	out := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, f.Field)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestCreateReservation(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)

	res, err := create(t, h, "O1", 1, 4)
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)
	require.Equal(t, string(domainbooking.StatusWaitingApproval), res.Status)
	require.Equal(t, 1, h.Outbox.Pending())

	stored, err := h.Reservations.ByID(context.Background(), domainbooking.ReservationID(res.ID))
	require.NoError(t, err)
	require.Equal(t, wiringtest.Day(1), stored.Range.Start)
}

func TestCreateRejectsOverlap(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)

	_, err := create(t, h, "O1", 1, 4)
	require.NoError(t, err)

	_, err = create(t, h, "O1", 3, 6)
	require.ErrorIs(t, err, domainavailability.ErrSchedulingConflict)
	var cerr *domainavailability.ConflictError
	require.True(t, errors.As(err, &cerr))
	require.Len(t, cerr.FieldErrors(), 2)

	// checkout day is free
	_, err = create(t, h, "O1", 4, 6)
	require.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)

	_, err := create(t, h, "O1", -2, 3)
	require.Equal(t, []string{"startDate"}, fields(t, err))

	_, err = create(t, h, "O1", 5, 3)
	require.Equal(t, []string{"startDate", "endDate"}, fields(t, err))

	_, err = commands.Dispatch[reservations.CreateCommand, *dto.Reservation](context.Background(), h.Commands, reservations.CreateCommand{
		OfferID: "O1", OccupantID: "guest", StartDate: wiringtest.Day(1), EndDate: wiringtest.Day(2), Adults: 0,
	})
	require.Contains(t, fields(t, err), "adults")

	_, err = create(t, h, "missing", 1, 2)
	require.ErrorIs(t, err, domainoffers.ErrOfferNotFound)
}

func TestCreateIsIdempotent(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)

	cmd := reservations.CreateCommand{
		OfferID: "O1", OccupantID: "guest", StartDate: wiringtest.Day(1), EndDate: wiringtest.Day(3), Adults: 1,
		IdempotencyKeyV: "req-1",
	}
	first, err := commands.Dispatch[reservations.CreateCommand, *dto.Reservation](context.Background(), h.Commands, cmd)
	require.NoError(t, err)
	second, err := commands.Dispatch[reservations.CreateCommand, *dto.Reservation](context.Background(), h.Commands, cmd)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	list, err := h.Reservations.Find(context.Background(), domainbooking.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestUpdateReservation(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)
	a, err := create(t, h, "O1", 1, 4)
	require.NoError(t, err)
	b, err := create(t, h, "O1", 6, 8)
	require.NoError(t, err)

	update := func(cmd reservations.UpdateCommand) (*dto.Reservation, error) {
		return commands.Dispatch[reservations.UpdateCommand, *dto.Reservation](context.Background(), h.Commands, cmd)
	}

	// moving the end only, overlapping itself is fine
	got, err := update(reservations.UpdateCommand{ID: a.ID, EndDate: ptr(wiringtest.Day(5))})
	require.NoError(t, err)
	require.Equal(t, wiringtest.Day(1), got.StartDate)
	require.Equal(t, wiringtest.Day(5), got.EndDate)

	_, err = update(reservations.UpdateCommand{ID: a.ID, EndDate: ptr(wiringtest.Day(7))})
	require.ErrorIs(t, err, domainavailability.ErrSchedulingConflict)

	got, err = update(reservations.UpdateCommand{ID: a.ID, Adults: ptr(3), Children: ptr(2)})
	require.NoError(t, err)
	require.Equal(t, 3, got.Adults)
	require.Equal(t, 2, got.Children)

	got, err = update(reservations.UpdateCommand{ID: b.ID, Status: ptr("CANCELLED"), CancelReason: ptr("OCCUPANT_CANCELLATION")})
	require.NoError(t, err)
	require.Equal(t, "CANCELLED", got.Status)
	require.Equal(t, "OCCUPANT_CANCELLATION", got.CancelReason)

	_, err = update(reservations.UpdateCommand{ID: b.ID, Status: ptr("CONFIRMED")})
	require.ErrorIs(t, err, domainbooking.ErrCancelledImmutable)

	// the cancelled dates are free again
	_, err = update(reservations.UpdateCommand{ID: a.ID, EndDate: ptr(wiringtest.Day(7))})
	require.NoError(t, err)
}

func TestUpdateKeepsPastStart(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)
	require.NoError(t, h.Reservations.Save(context.Background(), &domainbooking.Reservation{
		ID: "R-past", Offer: "O1", Occupant: "guest", Adults: 1, Status: domainbooking.StatusConfirmed,
		Range: mustRange(t, -3, 2),
	}))

	got, err := commands.Dispatch[reservations.UpdateCommand, *dto.Reservation](context.Background(), h.Commands, reservations.UpdateCommand{
		ID: "R-past", StartDate: ptr(wiringtest.Day(-3)), EndDate: ptr(wiringtest.Day(4)),
	})
	require.NoError(t, err)
	require.Equal(t, wiringtest.Day(4), got.EndDate)

	_, err = commands.Dispatch[reservations.UpdateCommand, *dto.Reservation](context.Background(), h.Commands, reservations.UpdateCommand{
		ID: "R-past", StartDate: ptr(wiringtest.Day(-2)),
	})
	require.Equal(t, []string{"startDate"}, fields(t, err))
}

func TestDeleteAndQueries(t *testing.T) {
	h := wiringtest.New(t)
	h.Offer(t, "O1", "H", "", nil)
	h.Offer(t, "O2", "H", "", nil)
	h.Offer(t, "X1", "Other", "", nil)
	a, err := create(t, h, "O1", 1, 3)
	require.NoError(t, err)
	_, err = create(t, h, "O2", 1, 3)
	require.NoError(t, err)
	_, err = create(t, h, "X1", 1, 3)
	require.NoError(t, err)

	list, err := queries.Ask[reservations.ListQuery, dto.ReservationCollection](context.Background(), h.Queries, reservations.ListQuery{HostID: "H"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)

	list, err = queries.Ask[reservations.ListQuery, dto.ReservationCollection](context.Background(), h.Queries, reservations.ListQuery{HostID: "H", OfferID: "X1"})
	require.NoError(t, err)
	require.Empty(t, list.Items)

	got, err := queries.Ask[reservations.GetQuery, *dto.Reservation](context.Background(), h.Queries, reservations.GetQuery{ID: a.ID})
	require.NoError(t, err)
	require.Equal(t, "O1", got.OfferID)

	res, err := commands.Dispatch[reservations.DeleteCommand, *reservations.DeleteResult](context.Background(), h.Commands, reservations.DeleteCommand{ID: a.ID})
	require.NoError(t, err)
	require.True(t, res.Deleted)

	_, err = queries.Ask[reservations.GetQuery, *dto.Reservation](context.Background(), h.Queries, reservations.GetQuery{ID: a.ID})
	require.ErrorIs(t, err, domainbooking.ErrReservationNotFound)

	list, err = queries.Ask[reservations.ListQuery, dto.ReservationCollection](context.Background(), h.Queries, reservations.ListQuery{OfferID: "O1"})
	require.NoError(t, err)
	require.Empty(t, list.Items)
}
