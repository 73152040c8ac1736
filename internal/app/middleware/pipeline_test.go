package middleware_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/middleware"
	"offerbook/internal/app/queries"
)

type commandBusFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f commandBusFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

type queryBusFunc func(ctx context.Context, q queries.Query) (any, error)

func (f queryBusFunc) Ask(ctx context.Context, q queries.Query) (any, error) {
	return f(ctx, q)
}

type offerLookup struct{}

func (offerLookup) Key() string { return "offers.get" }

func tracing(trace *[]string, name string) middleware.CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandBusFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			*trace = append(*trace, name)
			return next.Dispatch(ctx, cmd)
		})
	}
}

func TestChainCommandsRunsOutermostFirstAndSkipsNil(t *testing.T) {
	var trace []string
	base := commandBusFunc(func(context.Context, commands.Command) (any, error) {
		trace = append(trace, "handler")
		return "ok", nil
	})

	bus := middleware.ChainCommands(base,
		tracing(&trace, "logging"),
		nil,
		tracing(&trace, "serialize"),
	)
	res, err := bus.Dispatch(context.Background(), blackoutCmd{})
	require.NoError(t, err)
	require.Equal(t, "ok", res)
	require.Equal(t, []string{"logging", "serialize", "handler"}, trace)
}

func TestChainQueriesWithOnlyNilReturnsBase(t *testing.T) {
	var calls int
	base := queryBusFunc(func(context.Context, queries.Query) (any, error) {
		calls++
		return 7, nil
	})

	bus := middleware.ChainQueries(base, nil, nil)
	res, err := bus.Ask(context.Background(), offerLookup{})
	require.NoError(t, err)
	require.Equal(t, 7, res)
	require.Equal(t, 1, calls)
}
