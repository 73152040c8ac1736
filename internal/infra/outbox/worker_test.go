package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appoutbox "offerbook/internal/app/outbox"
	"offerbook/internal/infra/outbox"
	"offerbook/internal/infra/storage/memory"
)

type message struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	mu   sync.Mutex
	sent []message
	err  error
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, message{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func (p *fakeProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type publishCounter struct {
	ok, failed int
}

func (c *publishCounter) ObservePublish(err error) {
	if err != nil {
		c.failed++
		return
	}
	c.ok++
}

func record(id, name, aggregate string) appoutbox.EventRecord {
	return appoutbox.EventRecord{
		ID:         id,
		Name:       name,
		Payload:    []byte(`{"ReservationID":"` + aggregate + `"}`),
		OccurredAt: time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC),
		Aggregate:  aggregate,
		Headers:    map[string]string{"source": "offerbook", "traceparent": "00-abc-def-01"},
	}
}

func TestWorkerDrainPublishesCloudEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutbox()
	require.NoError(t, store.Add(ctx, record("evt-1", "reservation.requested", "r-1")))
	require.NoError(t, store.Add(ctx, record("evt-2", "blackout.added", "e-1")))

	producer := &fakeProducer{}
	counter := &publishCounter{}
	w := &outbox.Worker{Store: store, Producer: producer, TopicPrefix: "test.", Source: "app://offerbook-test", Observer: counter}

	n, err := w.Drain(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 0, store.Pending())
	require.Equal(t, 2, counter.ok)

	require.Len(t, producer.sent, 2)
	first := producer.sent[0]
	require.Equal(t, "test.reservation.events.v1", first.topic)
	require.Equal(t, "r-1", first.key)
	require.Equal(t, "application/cloudevents+json", first.headers["content-type"])
	require.Equal(t, "offerbook", first.headers["source"])
	require.Equal(t, "test.blackout.events.v1", producer.sent[1].topic)

	var evt map[string]any
	require.NoError(t, json.Unmarshal(first.payload, &evt))
	require.Equal(t, "1.0", evt["specversion"])
	require.Equal(t, "evt-1", evt["id"])
	require.Equal(t, "reservation.requested.v1", evt["type"])
	require.Equal(t, "app://offerbook-test", evt["source"])
	require.Equal(t, "00-abc-def-01", evt["traceparent"])
	require.Equal(t, map[string]any{"ReservationID": "r-1"}, evt["data"])

	n, err = w.Drain(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestWorkerReschedulesFailedPublish(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutbox()
	require.NoError(t, store.Add(ctx, record("evt-1", "reservation.cancelled", "r-1")))

	producer := &fakeProducer{err: errors.New("broker down")}
	counter := &publishCounter{}
	w := &outbox.Worker{Store: store, Producer: producer, Backoff: []time.Duration{time.Hour}, Observer: counter}

	n, err := w.Drain(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 1, counter.failed)
	require.Equal(t, 1, store.Pending())

	// not due again until the backoff elapses
	n, err = w.Drain(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestWorkerRejectsMalformedPayload(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutbox()
	rec := record("evt-1", "reservation.removed", "r-1")
	rec.Payload = []byte("not json")
	require.NoError(t, store.Add(ctx, rec))

	producer := &fakeProducer{}
	w := &outbox.Worker{Store: store, Producer: producer, Backoff: []time.Duration{time.Hour}}

	_, err := w.Drain(ctx)
	require.NoError(t, err)
	require.Zero(t, producer.count())
	require.Equal(t, 1, store.Pending())
}

func TestWorkerBatchLimit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOutbox()
	for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
		require.NoError(t, store.Add(ctx, record(id, "reservation.requested", "r-1")))
	}
	w := &outbox.Worker{Store: store, Producer: &fakeProducer{}, Batch: 2}

	n, err := w.Drain(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, 1, store.Pending())
}

func TestWorkerRun(t *testing.T) {
	require.ErrorIs(t, (&outbox.Worker{}).Run(context.Background()), outbox.ErrWorkerNotConfigured)

	store := memory.NewOutbox()
	require.NoError(t, store.Add(context.Background(), record("evt-1", "reservation.requested", "r-1")))
	producer := &fakeProducer{}
	w := &outbox.Worker{Store: store, Producer: producer, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return producer.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
