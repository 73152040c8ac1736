package main

import (
	"context"
	"errors"
	"log/slog"

	appoutbox "offerbook/internal/app/outbox"
	"offerbook/internal/infra/broker/kafka"
	"offerbook/internal/infra/config"
	"offerbook/internal/infra/obs"
	infraoutbox "offerbook/internal/infra/outbox"
)

// startRelay runs the outbox worker until ctx ends. The returned channel
// closes once the worker and its producer are shut down.
func startRelay(ctx context.Context, cfg config.Config, store appoutbox.RelayStore, metrics *obs.Metrics, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, outbox relay disabled")
		close(done)
		return done
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		logger.Error("kafka producer init failed, outbox relay disabled", "error", err)
		close(done)
		return done
	}
	worker := &infraoutbox.Worker{
		Store:       store,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Source:      "app://offerbook",
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
		Observer:    metrics,
	}
	go func() {
		defer close(done)
		defer producer.Close()
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox relay stopped", "error", err)
		}
	}()
	logger.Info("outbox relay started", "brokers", cfg.KafkaBrokers, "topic_prefix", cfg.KafkaTopicPrefix)
	return done
}
