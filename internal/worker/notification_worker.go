package worker

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/notify"
	"github.com/spec-kit/xpertshub/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// RunEmailConsumer delivers queued email jobs until ctx is cancelled or the
// delivery channel closes.
func RunEmailConsumer(ctx context.Context, deliveries <-chan amqp.Delivery, deliverer *notify.Deliverer, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn("email queue channel closed")
				return
			}
			deliverer.Deliver(ctx, d.Body, d.Headers, &d)
		}
	}
}
