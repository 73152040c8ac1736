package postgres

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	domainbooking "offerbook/internal/domain/booking"
	domainlocations "offerbook/internal/domain/locations"
	domainoffers "offerbook/internal/domain/offers"
	domainplanning "offerbook/internal/domain/planning"
)

func TestReservationQuery(t *testing.T) {
	sql, args := reservationQuery(domainbooking.Filter{})
	require.Equal(t, `SELECT `+reservationColumns+` FROM reservations ORDER BY start_at, id`, sql)
	require.Empty(t, args)

	sql, args = reservationQuery(domainbooking.Filter{
		OfferIDs:         []domainoffers.OfferID{"o-1", "o-2"},
		Occupant:         "u-1",
		ExcludeCancelled: true,
		ExcludeID:        "r-9",
	})
	require.Equal(t, `SELECT `+reservationColumns+` FROM reservations`+
		` WHERE offer_id = ANY($1) AND occupant_id = $2 AND status <> $3 AND id <> $4 ORDER BY start_at, id`, sql)
	require.Equal(t, []any{[]string{"o-1", "o-2"}, "u-1", "CANCELLED", "r-9"}, args)
}

func TestEntryQuery(t *testing.T) {
	sql, args := entryQuery(domainplanning.Filter{OfferIDs: []domainoffers.OfferID{"o-1"}, HostID: "h-1", ExcludeID: "e-1"})
	require.Equal(t, `SELECT `+entryColumns+` FROM planning_entries WHERE id <> $1`+
		` AND ((scope_kind = 'offer' AND offer_id = ANY($2)) OR (scope_kind = 'host' AND host_id = $3)) ORDER BY start_at, id`, sql)
	require.Equal(t, []any{"e-1", []string{"o-1"}, "h-1"}, args)

	sql, args = entryQuery(domainplanning.Filter{HostID: "h-1"})
	require.Contains(t, sql, `WHERE scope_kind = 'host' AND host_id = $1`)
	require.Equal(t, []any{"h-1"}, args)
}

func TestOfferSearchQueryDefaultsToAvailable(t *testing.T) {
	sql, args := offerSearchQuery(domainoffers.SearchParams{Host: "h-1"})
	require.Contains(t, sql, `WHERE status = $1 AND host_id = $2 ORDER BY created_at, id`)
	require.Equal(t, []any{"AVAILABLE", "h-1"}, args)
}

func TestCitySearchQuery(t *testing.T) {
	sql, args := citySearchQuery("Saint_", domainlocations.OrderByPopulation, 5)
	require.Contains(t, sql, `WHERE lower(name) LIKE $1 ORDER BY population DESC, name LIMIT 5`)
	require.Equal(t, []any{`saint\_%`}, args)

	sql, args = citySearchQuery("", domainlocations.OrderByName, 0)
	require.Equal(t, `SELECT `+locationColumns+` FROM locations ORDER BY lower(name)`, sql)
	require.Empty(t, args)
}

func TestTranslateSerializationFailure(t *testing.T) {
	err := translate(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})
	require.ErrorIs(t, err, ErrConcurrentUpdate)

	other := errors.New("boom")
	require.Equal(t, other, translate(other))
	require.NoError(t, translate(nil))
}

type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r[i]))
	}
	return nil
}

func reservationRow(status, reason string) fakeRow {
	at := time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC)
	return fakeRow{"r-1", "o-1", "u-1", at, at.AddDate(0, 0, 2), 2, 0, status, reason, at, at, int64(4)}
}

func TestScanReservationParsesStatus(t *testing.T) {
	res, err := scanReservation(reservationRow("PAYMENT_PENDING", ""))
	require.NoError(t, err)
	require.Equal(t, domainbooking.StatusPaymentPending, res.Status)
	require.Equal(t, domainbooking.CancelUnknown, res.CancelReason)
	require.Equal(t, int64(4), res.Version)

	_, err = scanReservation(reservationRow("ARCHIVED", ""))
	require.ErrorIs(t, err, domainbooking.ErrUnknownStatus)
	require.ErrorContains(t, err, "r-1")
}
