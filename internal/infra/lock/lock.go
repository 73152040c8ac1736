// Package lock provides the per-offer and per-host lockers used to serialize
// availability checks with the writes that depend on them.
package lock

import (
	"errors"
	"sort"
	"time"
)

var ErrNoKeys = errors.New("lock: at least one key is required")

// Observer receives the time spent waiting for a set of keys.
type Observer interface {
	ObserveLockWait(driver string, wait time.Duration, err error)
}

func sortedUnique(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
