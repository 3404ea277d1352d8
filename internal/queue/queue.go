package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/avast/retry-go/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/babylonlabs-io/staking-ledger/internal/config"
	"github.com/babylonlabs-io/staking-ledger/internal/observability/metrics"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
)

const exchangeKind = "topic"

// QueueManager publishes ledger events to a RabbitMQ topic exchange, routed
// by event type.
type QueueManager struct {
	cfg *config.QueueConfig

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	qm := &QueueManager{cfg: cfg}
	if err := qm.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to queue: %w", err)
	}

	return qm, nil
}

func (qm *QueueManager) PublishLedgerEvent(ctx context.Context, event *types.LedgerEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	err = retry.Do(
		func() error {
			return qm.publish(ctx, event.Type.String(), msg)
		},
		retry.Context(ctx),
		retry.Attempts(qm.cfg.MaxRetryAttempts),
		retry.Delay(qm.cfg.RetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().
				Err(err).
				Uint("attempt", n+1).
				Uint("max_attempts", qm.cfg.MaxRetryAttempts).
				Str("event_id", event.ID).
				Msg("failed to publish ledger event, retrying")
		}),
	)
	if err != nil {
		metrics.RecordQueueSendError()
		return fmt.Errorf("failed to publish ledger event %s: %w", event.ID, err)
	}

	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")

	qm.mu.Lock()
	defer qm.mu.Unlock()

	if qm.channel != nil {
		if err := qm.channel.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close queue channel")
		}
	}
	if qm.conn != nil {
		if err := qm.conn.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close queue connection")
		}
	}
}

func (qm *QueueManager) publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	if qm.conn == nil || qm.conn.IsClosed() || qm.channel == nil || qm.channel.IsClosed() {
		if err := qm.connectLocked(); err != nil {
			return err
		}
	}

	publishCtx, cancel := context.WithTimeout(ctx, qm.cfg.PublishTimeout)
	defer cancel()

	return qm.channel.PublishWithContext(publishCtx, qm.cfg.Exchange, routingKey, false, false, msg)
}

func (qm *QueueManager) connect() error {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	return qm.connectLocked()
}

func (qm *QueueManager) connectLocked() error {
	if qm.conn == nil || qm.conn.IsClosed() {
		conn, err := amqp.Dial(amqpURL(qm.cfg))
		if err != nil {
			return err
		}
		qm.conn = conn
	}

	channel, err := qm.conn.Channel()
	if err != nil {
		return err
	}

	err = channel.ExchangeDeclare(qm.cfg.Exchange, exchangeKind, true, false, false, false, nil)
	if err != nil {
		_ = channel.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", qm.cfg.Exchange, err)
	}

	qm.channel = channel
	return nil
}

func amqpURL(cfg *config.QueueConfig) string {
	return fmt.Sprintf("amqp://%s:%s@%s", cfg.QueueUser, cfg.QueuePassword, cfg.Url)
}

func newPublishing(event *types.LedgerEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal ledger event %s: %w", event.ID, err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         event.Type.String(),
		Timestamp:    event.Timestamp,
		Body:         body,
	}, nil
}
