package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"offerbook/internal/app/commands"
	"offerbook/internal/app/handlers/catalog"
	appinbox "offerbook/internal/app/inbox"
	"offerbook/internal/app/validation"
)

// CatalogOfferTypes are the CloudEvents types carrying a full offer snapshot.
var CatalogOfferTypes = map[string]bool{
	"offer.created.v1":  true,
	"offer.updated.v1":  true,
	"offer.upserted.v1": true,
}

type catalogEvent struct {
	ID   string                   `json:"id"`
	Type string                   `json:"type"`
	Time time.Time                `json:"time"`
	Data catalog.SyncOfferCommand `json:"data"`
}

// CatalogHandler turns catalog offer events into SyncOffer commands.
// Undecodable and invalid events are logged and acknowledged; anything else
// that fails is forgotten by the inbox and returned for redelivery.
type CatalogHandler struct {
	Commands commands.Bus
	Inbox    appinbox.Store
	Logger   *slog.Logger
}

func (h *CatalogHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	logger := h.logger().With("topic", msg.Topic, "offset", msg.Offset)
	var evt catalogEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		logger.Warn("catalog event dropped: undecodable", "error", err)
		return nil
	}
	if !CatalogOfferTypes[evt.Type] {
		return nil
	}
	if evt.ID == "" {
		logger.Warn("catalog event dropped: missing id", "type", evt.Type)
		return nil
	}
	logger = logger.With("event_id", evt.ID, "offer_id", evt.Data.OfferID)

	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, evt.ID)
		if err != nil {
			return err
		}
		if seen {
			logger.Debug("catalog event already processed")
			return nil
		}
	}

	cmd := evt.Data
	cmd.OccurredAt = evt.Time
	res, err := commands.Dispatch[catalog.SyncOfferCommand, catalog.SyncOfferResult](ctx, h.Commands, cmd)
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		logger.Warn("catalog event dropped: invalid offer", "error", err)
		return nil
	case err != nil:
		if h.Inbox != nil {
			if ferr := h.Inbox.Forget(ctx, evt.ID); ferr != nil {
				logger.Error("inbox forget failed", "error", ferr)
			}
		}
		return err
	}
	logger.Info("catalog offer synced", "applied", res.Applied)
	return nil
}

func (h *CatalogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ MessageHandler = (*CatalogHandler)(nil)
