package offers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/wiring/wiringtest"
	"offerbook/internal/domain/shared/daterange"
)

func mustRange(t *testing.T) daterange.DateRange {
	t.Helper()
	rng, err := daterange.New(wiringtest.Day(-10), wiringtest.Day(-7))
	require.NoError(t, err)
	return rng
}
