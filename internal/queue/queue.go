package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/stakelens/stakesync/internal/config"
	"github.com/stakelens/stakesync/internal/eligibility"
	"github.com/stakelens/stakesync/internal/observability/metrics"
)

const (
	mismatchRoutingKey = "eligibility.mismatch"
	publishTimeout     = 5 * time.Second
)

// QueueManager publishes diagnostic events to a RabbitMQ exchange so
// downstream reconciliation tooling can consume them.
type QueueManager struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	amqpURL := fmt.Sprintf("amqp://%s:%s@%s", cfg.User, cfg.Password, cfg.Url)
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to queue at %s: %w", cfg.Url, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open queue channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		cfg.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	return &QueueManager{
		conn:     conn,
		channel:  channel,
		exchange: cfg.Exchange,
	}, nil
}

func (qm *QueueManager) Publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return qm.channel.PublishWithContext(ctx, qm.exchange, routingKey, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})
}

// ReportMismatch implements eligibility.DiagnosticSink. Publish failures
// are absorbed here: diagnostics must never fail a sync cycle.
func (qm *QueueManager) ReportMismatch(ctx context.Context, d eligibility.Diagnostic) {
	body, err := json.Marshal(d)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to marshal mismatch diagnostic")
		return
	}

	if err := qm.Publish(ctx, mismatchRoutingKey, body); err != nil {
		metrics.RecordQueuePublishError()
		log.Ctx(ctx).Error().
			Err(err).
			Uint64("unit_id", d.UnitID).
			Msg("failed to publish mismatch diagnostic")
	}
}

// Shutdown gracefully stops the interaction with the queue, ensuring all
// resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")
	if err := qm.channel.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close queue channel")
	}
	if err := qm.conn.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close queue connection")
	}
}
