package support_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/handlers/support"
	"offerbook/internal/app/validation"
	"offerbook/internal/domain/shared/daterange"
)

var now = time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)

func at(day int) *time.Time {
	t := time.Date(2030, 6, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	out := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestResolveDatesOnCreate(t *testing.T) {
	rng, err := support.ResolveDates(nil, at(15), at(18), now)
	require.NoError(t, err)
	require.Equal(t, *at(15), rng.Start)

	_, err = support.ResolveDates(nil, at(14), at(18), now)
	require.Equal(t, []string{"startDate"}, fieldsOf(t, err))

	_, err = support.ResolveDates(nil, nil, at(18), now)
	require.Equal(t, []string{"startDate"}, fieldsOf(t, err))

	_, err = support.ResolveDates(nil, at(18), at(18), now)
	require.Equal(t, []string{"startDate", "endDate"}, fieldsOf(t, err))
}

func TestResolveDatesOnUpdate(t *testing.T) {
	current := daterange.DateRange{Start: *at(10), End: *at(20)}

	// unchanged past start is fine, only the end moves
	rng, err := support.ResolveDates(&current, at(10), at(22), now)
	require.NoError(t, err)
	require.Equal(t, *at(22), rng.End)

	rng, err = support.ResolveDates(&current, nil, at(25), now)
	require.NoError(t, err)
	require.Equal(t, *at(10), rng.Start)

	_, err = support.ResolveDates(&current, at(12), nil, now)
	require.Equal(t, []string{"startDate"}, fieldsOf(t, err))

	_, err = support.ResolveDates(&current, at(21), nil, now)
	require.Equal(t, []string{"startDate", "endDate"}, fieldsOf(t, err))
}
