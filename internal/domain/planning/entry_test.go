package planning_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"offerbook/internal/domain/offers"
	"offerbook/internal/domain/planning"
	"offerbook/internal/domain/shared/daterange"
)

func day(d int) time.Time {
	return time.Date(2030, 7, d, 0, 0, 0, 0, time.UTC)
}

func TestNewScope(t *testing.T) {
	s, err := planning.NewScope("o-1", "")
	require.NoError(t, err)
	require.Equal(t, planning.OfferScope{Offer: "o-1"}, s)

	s, err = planning.NewScope("", "h-1")
	require.NoError(t, err)
	require.Equal(t, planning.HostScope{Host: "h-1"}, s)

	_, err = planning.NewScope("o-1", "h-1")
	require.ErrorIs(t, err, planning.ErrScopeRequired)
	_, err = planning.NewScope(" ", "")
	require.ErrorIs(t, err, planning.ErrScopeRequired)
}

func TestFilterUnion(t *testing.T) {
	offerEntry := &planning.Entry{ID: "e-1", Scope: planning.OfferScope{Offer: "o-1"}}
	hostEntry := &planning.Entry{ID: "e-2", Scope: planning.HostScope{Host: "h-1"}}
	otherHost := &planning.Entry{ID: "e-3", Scope: planning.HostScope{Host: "h-2"}}

	f := planning.Filter{OfferIDs: []offers.OfferID{"o-1"}, HostID: "h-1"}
	require.True(t, f.Matches(offerEntry))
	require.True(t, f.Matches(hostEntry))
	require.False(t, f.Matches(otherHost))

	f.ExcludeID = "e-2"
	require.False(t, f.Matches(hostEntry))

	hostOnly := planning.Filter{HostID: "h-1"}
	require.False(t, hostOnly.Matches(offerEntry))
	require.True(t, hostOnly.Matches(hostEntry))

	require.True(t, planning.Filter{}.Matches(otherHost))
}

func TestEntryApplyKeepsUnsetFields(t *testing.T) {
	e, err := planning.NewEntry(planning.CreateParams{
		ID:          "e-1",
		Scope:       planning.OfferScope{Offer: "o-1"},
		Name:        "Renovation",
		Description: "kitchen",
		Range:       daterange.DateRange{Start: day(1), End: day(5)},
		Now:         day(1),
	})
	require.NoError(t, err)
	require.Equal(t, "blackout.added", e.Drain()[0].EventName())

	rng := daterange.DateRange{Start: day(2), End: day(6)}
	require.NoError(t, e.Apply(planning.Change{Range: &rng}, day(1)))
	require.Equal(t, "Renovation", e.Name)
	require.Equal(t, "kitchen", e.Description)
	require.Equal(t, rng, e.Range)
	require.Equal(t, "blackout.updated", e.Drain()[0].EventName())

	bad := daterange.DateRange{Start: day(6), End: day(2)}
	require.ErrorIs(t, e.Apply(planning.Change{Range: &bad}, day(1)), daterange.ErrInvalidRange)
}
