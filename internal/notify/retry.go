package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/config"
)

// AttemptHeader counts delivery attempts already made for a queued job.
const AttemptHeader = "x-attempt"

// Acknowledger is the subset of amqp.Delivery used when settling a job.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Retrier schedules a failed job for another attempt after delay.
type Retrier interface {
	Retry(ctx context.Context, body []byte, attempt int, delay time.Duration) error
}

// RetryPolicy bounds redelivery of failed jobs.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// NewRetryPolicy reads the policy from queue config.
func NewRetryPolicy(cfg config.QueueConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   time.Duration(cfg.RetryBaseSeconds) * time.Second,
		MaxDelay:    time.Duration(cfg.RetryMaxSeconds) * time.Second,
	}
}

// Backoff is the delay before attempt+1: BaseDelay doubled per attempt,
// capped at MaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// AttemptsMade reads AttemptHeader; a job without it has not been tried.
func AttemptsMade(headers amqp.Table) int {
	switch v := headers[AttemptHeader].(type) {
	case int:
		return v
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}

// QueueRetrier parks jobs in the retry queue with a per-message TTL.
type QueueRetrier struct {
	ch    *amqp.Channel
	queue string
}

// NewQueueRetrier retries jobs of queue over ch.
func NewQueueRetrier(ch *amqp.Channel, queue string) *QueueRetrier {
	return &QueueRetrier{ch: ch, queue: queue}
}

func (r *QueueRetrier) Retry(ctx context.Context, body []byte, attempt int, delay time.Duration) error {
	return r.ch.PublishWithContext(ctx, "", RetryQueueName(r.queue), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Expiration:   strconv.FormatInt(delay.Milliseconds(), 10),
		Headers:      amqp.Table{AttemptHeader: int32(attempt)},
		Body:         body,
	})
}

// Deliverer settles queued email jobs.
type Deliverer struct {
	Sender  Sender
	Retrier Retrier
	Policy  RetryPolicy
	Logger  *zap.Logger
}

// Deliver decodes one job and hands it to the sender. Malformed jobs are
// dead-lettered at once. A failed send is parked for a later attempt until
// Policy.MaxAttempts is reached, then dead-lettered.
func (d *Deliverer) Deliver(ctx context.Context, body []byte, headers amqp.Table, ack Acknowledger) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Warn("dropping malformed email job", zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}
	if err := msg.Validate(); err != nil {
		logger.Warn("dropping invalid email job", zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	sendErr := d.Sender.Send(c, msg)
	if sendErr == nil {
		_ = ack.Ack(false)
		return
	}

	attempt := AttemptsMade(headers) + 1
	fields := []zap.Field{
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attempt", attempt),
		zap.Error(sendErr),
	}
	if d.Retrier == nil || attempt >= d.Policy.MaxAttempts {
		logger.Error("email delivery failed; giving up", fields...)
		_ = ack.Nack(false, false)
		return
	}

	delay := d.Policy.Backoff(attempt)
	if err := d.Retrier.Retry(ctx, body, attempt, delay); err != nil {
		logger.Error("email retry could not be scheduled; requeueing", append(fields, zap.NamedError("retry_error", err))...)
		_ = ack.Nack(false, true)
		return
	}
	logger.Warn("email delivery failed; retry scheduled", append(fields, zap.Duration("delay", delay))...)
	_ = ack.Ack(false)
}
