package memory

import (
	"context"
	"sync"

	appinbox "offerbook/internal/app/inbox"
)

// Inbox remembers consumed event ids for the lifetime of the process.
type Inbox struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewInbox() *Inbox {
	return &Inbox{seen: make(map[string]struct{})}
}

func (i *Inbox) Seen(ctx context.Context, eventID string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.seen[eventID]; ok {
		return true, nil
	}
	i.seen[eventID] = struct{}{}
	return false, nil
}

func (i *Inbox) Forget(ctx context.Context, eventID string) error {
	i.mu.Lock()
	delete(i.seen, eventID)
	i.mu.Unlock()
	return nil
}

var _ appinbox.Store = (*Inbox)(nil)
