package ranking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"offerbook/internal/domain/geo"
	"offerbook/internal/domain/locations"
	"offerbook/internal/domain/offers"
	"offerbook/internal/domain/ranking"
	"offerbook/internal/infra/storage/memory"
)

var paris = geo.Coordinate{Lat: 48.8566, Lon: 2.3522}

// north returns a point roughly km kilometres north of paris.
func north(km float64) *geo.Coordinate {
	return &geo.Coordinate{Lat: paris.Lat + km/111.19, Lon: paris.Lon}
}

type durations struct{ n int }

func (d *durations) ObserveRanking(time.Duration) { d.n++ }

func ids(cands []ranking.Candidate) []offers.OfferID {
	out := make([]offers.OfferID, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Offer.ID)
	}
	return out
}

func TestRankNearBeforeFar(t *testing.T) {
	obs := &durations{}
	orch := ranking.NewOrchestrator(memory.NewLocationRepository(), obs)
	cands := []ranking.Candidate{
		{Offer: &offers.Offer{ID: "far", Coordinates: north(80)}, AverageRating: ptr(5), ReviewCount: 1000},
		{Offer: &offers.Offer{ID: "mid", Coordinates: north(45)}, AverageRating: ptr(5), ReviewCount: 600},
		{Offer: &offers.Offer{ID: "close", Coordinates: north(10)}},
		{Offer: &offers.Offer{ID: "nowhere"}},
	}

	got, err := orch.Rank(context.Background(), cands, ranking.Origin{Coordinates: &paris})
	require.NoError(t, err)
	require.Equal(t, []offers.OfferID{"mid", "close", "far", "nowhere"}, ids(got))
	require.Nil(t, got[3].Distance)
	require.Equal(t, 1, obs.n)

	// input order untouched
	require.Equal(t, offers.OfferID("far"), cands[0].Offer.ID)
	require.Nil(t, cands[0].Distance)
}

func TestRankUsesLocationAndCityBonus(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLocationRepository()
	require.NoError(t, repo.Save(ctx, &locations.City{ID: "paris", Name: "Paris", Coordinates: paris}))
	orch := ranking.NewOrchestrator(repo, nil)

	city := offers.CityID("paris")
	cands := []ranking.Candidate{
		{Offer: &offers.Offer{ID: "a", City: "elsewhere", Coordinates: north(2)}},
		{Offer: &offers.Offer{ID: "b", City: "paris", Coordinates: north(2)}},
	}
	got, err := orch.Rank(ctx, cands, ranking.Origin{City: &city})
	require.NoError(t, err)
	require.Equal(t, []offers.OfferID{"b", "a"}, ids(got))
	require.InDelta(t, got[1].SortScore+1, got[0].SortScore, 1e-9)
}

func TestRankExplicitCoordinatesSkipCityBonus(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewLocationRepository()
	require.NoError(t, repo.Save(ctx, &locations.City{ID: "paris", Name: "Paris", Coordinates: paris}))
	orch := ranking.NewOrchestrator(repo, nil)

	city := offers.CityID("paris")
	cands := []ranking.Candidate{{Offer: &offers.Offer{ID: "b", City: "paris", Coordinates: north(2)}}}
	got, err := orch.Rank(ctx, cands, ranking.Origin{Coordinates: &paris, City: &city})
	require.NoError(t, err)
	require.InDelta(t, ranking.DistanceScore(*got[0].Distance), got[0].SortScore, 1e-9)
}

func TestRankWithoutOriginKeepsOrder(t *testing.T) {
	orch := ranking.NewOrchestrator(memory.NewLocationRepository(), nil)
	unknown := offers.CityID("atlantis")
	invalid := geo.Coordinate{Lat: 123, Lon: 0}
	cands := []ranking.Candidate{
		{Offer: &offers.Offer{ID: "x", Coordinates: north(500)}, ReviewCount: 3},
		{Offer: &offers.Offer{ID: "y", Coordinates: north(1)}, ReviewCount: 30},
	}
	got, err := orch.Rank(context.Background(), cands, ranking.Origin{Coordinates: &invalid, City: &unknown})
	require.NoError(t, err)
	require.Equal(t, []offers.OfferID{"x", "y"}, ids(got))
	require.Nil(t, got[0].Distance)
	require.InDelta(t, 0, got[0].SortScore, 1e-9)
	require.InDelta(t, 1, got[1].SortScore, 1e-9)
}
