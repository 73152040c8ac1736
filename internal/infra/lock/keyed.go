package lock

import (
	"context"
	"sync"
	"time"

	"offerbook/internal/app/middleware"
)

// Keyed is an in-process locker with one mutex per key. Entries are dropped
// once no caller holds or waits for them.
type Keyed struct {
	mu       sync.Mutex
	entries  map[string]*keyedEntry
	observer Observer
}

type keyedEntry struct {
	sem  chan struct{}
	refs int
}

func NewKeyed(observer Observer) *Keyed {
	return &Keyed{entries: make(map[string]*keyedEntry), observer: observer}
}

func (k *Keyed) Acquire(ctx context.Context, keys ...string) (middleware.Release, error) {
	keys = sortedUnique(keys)
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	start := time.Now()
	held := make([]string, 0, len(keys))
	for _, key := range keys {
		entry := k.ref(key)
		select {
		case entry.sem <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			k.unref(key)
			k.release(held)
			k.observe(start, ctx.Err())
			return nil, ctx.Err()
		}
	}
	k.observe(start, nil)
	var once sync.Once
	return func() {
		once.Do(func() { k.release(held) })
	}, nil
}

// Len reports how many keys are currently tracked.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

func (k *Keyed) ref(key string) *keyedEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &keyedEntry{sem: make(chan struct{}, 1)}
		k.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (k *Keyed) unref(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.entries[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(k.entries, key)
	}
}

func (k *Keyed) release(held []string) {
	for i := len(held) - 1; i >= 0; i-- {
		k.mu.Lock()
		entry := k.entries[held[i]]
		k.mu.Unlock()
		if entry == nil {
			continue
		}
		<-entry.sem
		k.unref(held[i])
	}
}

func (k *Keyed) observe(start time.Time, err error) {
	if k.observer != nil {
		k.observer.ObserveLockWait("memory", time.Since(start), err)
	}
}

var _ middleware.Locker = (*Keyed)(nil)
