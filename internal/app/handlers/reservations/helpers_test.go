package reservations_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/wiring/wiringtest"
	"offerbook/internal/domain/shared/daterange"
)

func mustRange(t *testing.T, from, to int) daterange.DateRange {
	t.Helper()
	rng, err := daterange.New(wiringtest.Day(from), wiringtest.Day(to))
	require.NoError(t, err)
	return rng
}
