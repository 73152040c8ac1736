package middleware_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/middleware"
)

type blackoutCmd struct{}

func (blackoutCmd) Key() string { return "planning.add" }

type recordingLocker struct {
	mu       sync.Mutex
	held     []string
	acquired [][]string
	released int
}

func (l *recordingLocker) Acquire(_ context.Context, keys ...string) (middleware.Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquired = append(l.acquired, append([]string(nil), keys...))
	l.held = keys
	return func() {
		l.mu.Lock()
		l.held = nil
		l.released++
		l.mu.Unlock()
	}, nil
}

func (l *recordingLocker) holding() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// keysSequence answers successive key lookups from steps, repeating the last.
func keysSequence(steps ...[]string) middleware.LockKeyFunc {
	var n int
	return func(context.Context, commands.Command) ([]string, error) {
		i := n
		if i >= len(steps) {
			i = len(steps) - 1
		}
		n++
		return steps[i], nil
	}
}

func serializedBus(locker *recordingLocker, keys middleware.LockKeyFunc, seen *[]string) commands.Bus {
	base := commands.NewInMemoryBus()
	commands.RegisterHandler[blackoutCmd, struct{}](base, "planning.add", commands.HandlerFunc[blackoutCmd, struct{}](
		func(context.Context, blackoutCmd) (struct{}, error) {
			*seen = locker.holding()
			return struct{}{}, nil
		}))
	return middleware.ChainCommands(base, middleware.Serialize(locker, keys))
}

func TestSerializeHoldsStableKeys(t *testing.T) {
	locker := &recordingLocker{}
	var seen []string
	bus := serializedBus(locker, keysSequence([]string{"offer:O1", "host:H", "host:H"}), &seen)

	_, err := bus.Dispatch(context.Background(), blackoutCmd{})
	require.NoError(t, err)
	require.Equal(t, []string{"host:H", "offer:O1"}, seen)
	require.Len(t, locker.acquired, 1)
	require.Equal(t, 1, locker.released)
}

func TestSerializeRetakesLocksWhenHostGainsOffer(t *testing.T) {
	locker := &recordingLocker{}
	var seen []string
	bus := serializedBus(locker, keysSequence(
		[]string{"host:H", "offer:O1"},
		[]string{"host:H", "offer:O1", "offer:X"},
	), &seen)

	_, err := bus.Dispatch(context.Background(), blackoutCmd{})
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"host:H", "offer:O1"},
		{"host:H", "offer:O1", "offer:X"},
	}, locker.acquired)
	require.Equal(t, []string{"host:H", "offer:O1", "offer:X"}, seen)
	require.Equal(t, 2, locker.released)
}

func TestSerializeKeepsKeysThatShrank(t *testing.T) {
	locker := &recordingLocker{}
	var seen []string
	bus := serializedBus(locker, keysSequence([]string{"host:H", "offer:O1", "offer:O2"}, []string{"host:H", "offer:O1"}), &seen)

	_, err := bus.Dispatch(context.Background(), blackoutCmd{})
	require.NoError(t, err)
	require.Len(t, locker.acquired, 1)
	require.Equal(t, []string{"host:H", "offer:O1", "offer:O2"}, seen)
}

func TestSerializeGivesUpOnEverGrowingKeys(t *testing.T) {
	locker := &recordingLocker{}
	var n int
	growing := func(context.Context, commands.Command) ([]string, error) {
		n++
		keys := []string{"host:H"}
		for i := 0; i < n; i++ {
			keys = append(keys, "offer:"+string(rune('A'+i)))
		}
		return keys, nil
	}
	var seen []string
	bus := serializedBus(locker, growing, &seen)

	_, err := bus.Dispatch(context.Background(), blackoutCmd{})
	require.ErrorIs(t, err, middleware.ErrLockKeysUnstable)
	require.Nil(t, seen)
	require.Equal(t, len(locker.acquired), locker.released)
}
