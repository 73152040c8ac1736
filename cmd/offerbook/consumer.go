package main

import (
	"context"
	"log/slog"

	"offerbook/internal/app/commands"
	appinbox "offerbook/internal/app/inbox"
	"offerbook/internal/infra/broker/kafka"
	"offerbook/internal/infra/config"
)

// startCatalogConsumer mirrors catalog offer events into the offer store
// until ctx ends.
func startCatalogConsumer(ctx context.Context, cfg config.Config, bus commands.Bus, inbox appinbox.Store, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	if len(cfg.KafkaBrokers) == 0 || cfg.CatalogTopic == "" {
		logger.Info("catalog consumer disabled", "topic", cfg.CatalogTopic)
		close(done)
		return done
	}
	handler := &kafka.CatalogHandler{Commands: bus, Inbox: inbox, Logger: logger}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, handler, logger)
	if err != nil {
		logger.Error("kafka consumer init failed, catalog sync disabled", "error", err)
		close(done)
		return done
	}
	go func() {
		<-ctx.Done()
		_ = consumer.Close()
	}()
	go func() {
		defer close(done)
		if err := consumer.Run(ctx, []string{cfg.CatalogTopic}); err != nil && ctx.Err() == nil {
			logger.Error("catalog consumer stopped", "error", err)
		}
	}()
	logger.Info("catalog consumer started", "topic", cfg.CatalogTopic, "group", cfg.KafkaGroupID)
	return done
}
