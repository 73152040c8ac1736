package middleware

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"offerbook/internal/app/commands"
)

// Release gives back every key taken by one Acquire call.
type Release func()

// Locker grants exclusive ownership of a set of keys. Implementations must
// acquire keys in the order given and block until ctx is done.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (Release, error)
}

// LockKeyFunc names the keys a command must hold. No keys means no locking.
type LockKeyFunc func(ctx context.Context, cmd commands.Command) ([]string, error)

// ErrLockKeysUnstable is returned when a command's key set keeps growing
// while its locks are being taken.
var ErrLockKeysUnstable = errors.New("middleware: lock keys changed during acquisition")

const maxLockAttempts = 4

// Serialize holds the command's keys for the whole downstream chain. Placed
// before Transaction, the lock covers check, write and commit.
//
// Keys are resolved before locking, so they are resolved again once held: a
// host gaining an offer in between widens the set and the locks are retaken.
func Serialize(locker Locker, keysFor LockKeyFunc) CommandMiddleware {
	if locker == nil {
		panic("middleware: locker required")
	}
	if keysFor == nil {
		panic("middleware: lock key func required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			keys, err := keysFor(ctx, cmd)
			if err != nil {
				return nil, err
			}
			keys = normalizeKeys(keys)
			if len(keys) == 0 {
				return nextFn(ctx, cmd)
			}
			for attempt := 1; ; attempt++ {
				release, err := locker.Acquire(ctx, keys...)
				if err != nil {
					return nil, err
				}
				current, err := keysFor(ctx, cmd)
				if err != nil {
					release()
					return nil, err
				}
				missing := missingKeys(keys, normalizeKeys(current))
				if len(missing) == 0 {
					defer release()
					return nextFn(ctx, cmd)
				}
				release()
				if attempt == maxLockAttempts {
					return nil, fmt.Errorf("%w: %s", ErrLockKeysUnstable, cmd.Key())
				}
				keys = normalizeKeys(append(keys, missing...))
			}
		})
	}
}

// missingKeys returns the keys of want not present in held. Both are sorted.
func missingKeys(held, want []string) []string {
	var out []string
	for _, k := range want {
		i := sort.SearchStrings(held, k)
		if i == len(held) || held[i] != k {
			out = append(out, k)
		}
	}
	return out
}

func normalizeKeys(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
