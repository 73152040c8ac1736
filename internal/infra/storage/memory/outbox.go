package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "offerbook/internal/app/outbox"
)

type outboxState int

const (
	outboxNew outboxState = iota
	outboxClaimed
	outboxSent
	outboxFailed
)

type outboxEntry struct {
	record   appoutbox.EventRecord
	state    outboxState
	attempts int
	next     time.Time
	lastErr  string
}

// Outbox keeps event records in memory and serves them to the relay worker.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
	index   map[string]*outboxEntry
	now     func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{index: make(map[string]*outboxEntry), now: func() time.Time { return time.Now().UTC() }}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	entry := &outboxEntry{record: record, state: outboxNew, next: o.now()}
	o.entries = append(o.entries, entry)
	o.index[record.ID] = entry
	return nil
}

// Flush drops records that were already relayed.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.entries[:0]
	for _, e := range o.entries {
		if e.state == outboxSent {
			delete(o.index, e.record.ID)
			continue
		}
		kept = append(kept, e)
	}
	o.entries = kept
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*appoutbox.Pending, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	for _, e := range o.entries {
		if (e.state == outboxNew || e.state == outboxFailed) && !e.next.After(now) {
			e.state = outboxClaimed
			return &appoutbox.Pending{EventRecord: e.record, Attempts: e.attempts}, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.index[id]; ok {
		e.state = outboxSent
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.index[id]; ok {
		e.state = outboxFailed
		e.attempts++
		e.next = next
		e.lastErr = errMsg
	}
	return nil
}

// Pending counts records not yet relayed.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, e := range o.entries {
		if e.state != outboxSent {
			n++
		}
	}
	return n
}

var (
	_ appoutbox.Outbox     = (*Outbox)(nil)
	_ appoutbox.RelayStore = (*Outbox)(nil)
)
