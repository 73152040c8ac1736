package memory_test

import (
	"time"

	appoutbox "offerbook/internal/app/outbox"
)

func appRecord(id string) appoutbox.EventRecord {
	return appoutbox.EventRecord{ID: id, Name: "reservation.requested", OccurredAt: time.Now().UTC()}
}
