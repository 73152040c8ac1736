// Package inbox deduplicates consumed broker events.
package inbox

import "context"

// Store remembers event ids per consumer.
type Store interface {
	// Seen records eventID and reports whether it was already recorded.
	Seen(ctx context.Context, eventID string) (bool, error)
	// Forget drops eventID so a redelivery is processed again.
	Forget(ctx context.Context, eventID string) error
}
