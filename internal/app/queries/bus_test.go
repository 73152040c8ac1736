package queries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/queries"
)

type lookup struct{ Name string }

func (lookup) Key() string { return "places.search" }

type unknown struct{}

func (unknown) Key() string { return "places.unknown" }

func TestAskTyped(t *testing.T) {
	bus := queries.NewInMemoryBus()
	queries.RegisterHandler[lookup, []string](bus, "places.search", queries.HandlerFunc[lookup, []string](
		func(_ context.Context, q lookup) ([]string, error) {
			return []string{q.Name}, nil
		}))

	got, err := queries.Ask[lookup, []string](context.Background(), bus, lookup{Name: "Lyon"})
	require.NoError(t, err)
	require.Equal(t, []string{"Lyon"}, got)

	_, err = bus.Ask(context.Background(), unknown{})
	require.ErrorIs(t, err, queries.ErrHandlerNotFound)
	require.ErrorContains(t, err, "places.unknown")

	_, err = queries.Ask[lookup, int](context.Background(), bus, lookup{})
	require.ErrorIs(t, err, queries.ErrResultType)
	require.ErrorContains(t, err, "places.search returned []string, want int")

	_, err = queries.Ask[lookup, int](context.Background(), nil, lookup{})
	require.ErrorIs(t, err, queries.ErrNilBus)
}
