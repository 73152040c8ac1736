package outbox_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"offerbook/internal/app/outbox"
	"offerbook/internal/domain/booking"
	"offerbook/internal/domain/shared/events"
)

type recordingBox struct {
	records []outbox.EventRecord
}

func (b *recordingBox) Add(_ context.Context, rec outbox.EventRecord) error {
	b.records = append(b.records, rec)
	return nil
}

func (b *recordingBox) Flush(context.Context) error { return nil }

func TestRecordDomainEvents(t *testing.T) {
	at := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	evs := []events.DomainEvent{
		booking.ReservationCancelled{ReservationID: "r-1", OfferID: "o-1", Reason: booking.CancelByOwner, At: at},
	}
	box := &recordingBox{}
	enc := outbox.JSONEventEncoder{IDGenerator: func() string { return "evt-1" }, Source: "offerbook"}

	require.NoError(t, outbox.RecordDomainEvents(context.Background(), box, enc, evs))
	require.Len(t, box.records, 1)

	rec := box.records[0]
	require.Equal(t, "evt-1", rec.ID)
	require.Equal(t, "reservation.cancelled", rec.Name)
	require.Equal(t, "r-1", rec.Aggregate)
	require.Equal(t, at, rec.OccurredAt)
	require.Equal(t, "offerbook", rec.Headers["source"])

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Payload, &body))
	require.Equal(t, "OWNER_CANCELLATION", body["Reason"])
}

func TestRecordDomainEventsWithoutBox(t *testing.T) {
	require.NoError(t, outbox.RecordDomainEvents(context.Background(), nil, nil, []events.DomainEvent{
		booking.ReservationRemoved{ReservationID: "r-1"},
	}))
}
