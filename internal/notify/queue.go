package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/spec-kit/xpertshub/internal/config"
)

// QueueSender publishes messages as JSON jobs onto a durable RabbitMQ queue.
// cmd/email_worker drains the queue.
type QueueSender struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewQueueSender dials RabbitMQ and declares the email queue.
func NewQueueSender(cfg config.QueueConfig) (*QueueSender, error) {
	if cfg.URL == "" || cfg.EmailQueue == "" {
		return nil, fmt.Errorf("rabbitmq not configured")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := DeclareQueue(ch, cfg.EmailQueue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &QueueSender{conn: conn, ch: ch, queue: cfg.EmailQueue}, nil
}

// DeclareQueue declares the durable email queue together with its retry
// and dead-letter queues. Jobs rejected without requeue land in the dead
// queue; jobs parked in the retry queue return to the email queue when their
// per-message TTL expires.
func DeclareQueue(ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(DeadQueueName(queue), true, false, false, false, nil); err != nil {
		return fmt.Errorf("dead queue declare: %w", err)
	}
	if _, err := ch.QueueDeclare(RetryQueueName(queue), true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": queue,
	}); err != nil {
		return fmt.Errorf("retry queue declare: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DeadQueueName(queue),
	}); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}

// RetryQueueName is the holding queue for jobs awaiting another attempt.
func RetryQueueName(queue string) string { return queue + ".retry" }

// DeadQueueName collects jobs that will not be attempted again.
func DeadQueueName(queue string) string { return queue + ".dead" }

func (q *QueueSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Close releases the channel and connection.
func (q *QueueSender) Close() {
	if q == nil {
		return
	}
	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		_ = q.conn.Close()
	}
}
