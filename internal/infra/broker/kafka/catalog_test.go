package kafka_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/wiring/wiringtest"
	domainoffers "offerbook/internal/domain/offers"
	"offerbook/internal/infra/broker/kafka"
	"offerbook/internal/infra/storage/memory"
)

const offerEvent = `{
	"specversion": "1.0",
	"id": "evt-1",
	"type": "offer.upserted.v1",
	"time": "2030-06-15T11:00:00Z",
	"data": {"id": "O1", "hostId": "H1", "cityId": "lyon", "title": "Canal flat", "status": "AVAILABLE"}
}`

func message(value string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "catalog.events.v1", Value: []byte(value)}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type failingBus struct{ calls int }

func (b *failingBus) Dispatch(context.Context, commands.Command) (any, error) {
	b.calls++
	return nil, errors.New("store unavailable")
}

func TestCatalogHandlerSyncsOfferOnce(t *testing.T) {
	h := wiringtest.New(t)
	inbox := memory.NewInbox()
	handler := &kafka.CatalogHandler{Commands: h.Commands, Inbox: inbox, Logger: discard()}

	require.NoError(t, handler.Handle(context.Background(), message(offerEvent)))
	offer, err := h.Offers.ByID(context.Background(), "O1")
	require.NoError(t, err)
	require.Equal(t, domainoffers.HostID("H1"), offer.Host)
	require.Equal(t, domainoffers.StatusAvailable, offer.Status)

	require.NoError(t, h.Offers.Save(context.Background(), &domainoffers.Offer{
		ID: "O1", Host: "H2", Title: "moved", Status: domainoffers.StatusAvailable,
	}))
	require.NoError(t, handler.Handle(context.Background(), message(offerEvent)))
	offer, err = h.Offers.ByID(context.Background(), "O1")
	require.NoError(t, err)
	require.Equal(t, domainoffers.HostID("H2"), offer.Host)
}

func TestCatalogHandlerAcknowledgesUnusableEvents(t *testing.T) {
	h := wiringtest.New(t)
	handler := &kafka.CatalogHandler{Commands: h.Commands, Inbox: memory.NewInbox(), Logger: discard()}
	ctx := context.Background()

	require.NoError(t, handler.Handle(ctx, message(`{not json`)))
	require.NoError(t, handler.Handle(ctx, message(`{"id":"e","type":"offer.deleted.v1","data":{}}`)))
	require.NoError(t, handler.Handle(ctx, message(`{"type":"offer.upserted.v1","data":{"id":"O1"}}`)))
	require.NoError(t, handler.Handle(ctx, message(`{"id":"e2","type":"offer.upserted.v1","data":{"id":"O1","hostId":"H1"}}`)))

	_, err := h.Offers.ByID(ctx, "O1")
	require.ErrorIs(t, err, domainoffers.ErrOfferNotFound)
}

func TestCatalogHandlerForgetsFailedEvents(t *testing.T) {
	bus := &failingBus{}
	inbox := memory.NewInbox()
	handler := &kafka.CatalogHandler{Commands: bus, Inbox: inbox, Logger: discard()}

	require.Error(t, handler.Handle(context.Background(), message(offerEvent)))
	require.Error(t, handler.Handle(context.Background(), message(offerEvent)))
	require.Equal(t, 2, bus.calls)

	seen, err := inbox.Seen(context.Background(), "evt-1")
	require.NoError(t, err)
	require.False(t, seen)
}
