package kafka_test

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"

	"offerbook/internal/infra/broker/kafka"
)

func TestPublishSendsKeyedMessage(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "reservation.events.v1" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "r-1" {
			return errors.New("unexpected key " + string(key))
		}
		if len(msg.Headers) != 2 || string(msg.Headers[0].Key) != "content-type" || string(msg.Headers[1].Key) != "source" {
			return errors.New("headers not sorted")
		}
		return nil
	})

	p := kafka.NewProducerFrom(mock)
	err := p.Publish(context.Background(), "reservation.events.v1", "r-1", []byte(`{}`), map[string]string{
		"source":       "offerbook",
		"content-type": "application/cloudevents+json",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishReturnsBrokerError(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := kafka.NewProducerFrom(mock)
	err := p.Publish(context.Background(), "blackout.events.v1", "e-1", []byte(`{}`), nil)
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	p := kafka.NewProducerFrom(mock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, p.Publish(ctx, "reservation.events.v1", "r-1", nil, nil), context.Canceled)
	require.NoError(t, p.Close())
}
