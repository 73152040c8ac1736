package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/middleware"
	"offerbook/internal/app/queries"
	"offerbook/internal/app/validation"
)

type moveOfferCmd struct {
	OfferID string   `validate:"required"`
	Lat     *float64 `validate:"omitempty,min=-90,max=90"`
	Lon     *float64 `validate:"omitempty,min=-180,max=180"`
}

func (moveOfferCmd) Key() string { return "catalog.move" }

func (c moveOfferCmd) Validate() error {
	if (c.Lat == nil) != (c.Lon == nil) {
		return validation.Field("lat", "lat and lon must be given together")
	}
	return nil
}

type nearbyQuery struct {
	Lat *float64
	Lon *float64
}

func (nearbyQuery) Key() string { return "offers.nearby" }

func (q nearbyQuery) Validate() error {
	if (q.Lat == nil) != (q.Lon == nil) {
		return validation.Field("lon", "lat and lon must be given together")
	}
	return nil
}

func ptr(v float64) *float64 { return &v }

func TestValidationRunsCrossFieldRulesAfterTags(t *testing.T) {
	var handled int
	bus := middleware.ChainCommands(commandBusFunc(func(context.Context, commands.Command) (any, error) {
		handled++
		return nil, nil
	}), middleware.Validation(validation.New()))
	ctx := context.Background()

	_, err := bus.Dispatch(ctx, moveOfferCmd{Lat: ptr(48.8)})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "OfferID", verr.Fields[0].Field, "tag errors come first")

	_, err = bus.Dispatch(ctx, moveOfferCmd{OfferID: "o-1", Lat: ptr(48.8)})
	require.ErrorIs(t, err, validation.ErrInvalid)
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "lat", verr.Fields[0].Field)

	_, err = bus.Dispatch(ctx, moveOfferCmd{OfferID: "o-1", Lat: ptr(48.8), Lon: ptr(2.3)})
	require.NoError(t, err)
	require.Equal(t, 1, handled)
}

func TestQueryValidationRunsCrossFieldRules(t *testing.T) {
	bus := middleware.ChainQueries(queryBusFunc(func(context.Context, queries.Query) (any, error) {
		return "ranked", nil
	}), middleware.QueryValidation(validation.New()))

	_, err := bus.Ask(context.Background(), nearbyQuery{Lon: ptr(2.3)})
	require.ErrorIs(t, err, validation.ErrInvalid)

	res, err := bus.Ask(context.Background(), nearbyQuery{})
	require.NoError(t, err)
	require.Equal(t, "ranked", res)
}
