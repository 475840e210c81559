package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/config"
	"github.com/spec-kit/xpertshub/internal/events"
	"github.com/spec-kit/xpertshub/internal/notify"
	"github.com/spec-kit/xpertshub/internal/observability"
	"github.com/spec-kit/xpertshub/internal/pricing"
)

// NotificationService handles emitting notifications for domain events.
// Delivery is best effort: failures are logged and counted, never returned.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     notify.Sender
	logger     *zap.Logger
	metrics    *observability.Metrics
	siteURL    string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sender notify.Sender, logger *zap.Logger, metrics *observability.Metrics, app config.AppConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
		metrics:    metrics,
		siteURL:    app.SiteURL,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventServiceRequestCreated, n.handleServiceRequestCreated)
	n.dispatcher.Subscribe(events.EventServiceModerated, n.logEvent)
	n.dispatcher.Subscribe(events.EventRatingCreated, n.logEvent)
}

func (n *NotificationService) handleServiceRequestCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ServiceRequestCreatedPayload)
	if !ok {
		n.logger.Error("unexpected payload for service request event", zap.String("event_id", event.ID))
		return nil
	}

	data := notify.RequestEmail{
		CustomerName:  payload.CustomerName,
		CustomerEmail: payload.CustomerEmail,
		CompanyName:   payload.CompanyName,
		CompanyEmail:  payload.CompanyEmail,
		ServiceName:   payload.ServiceName,
		ServiceField:  payload.Field.String(),
		Address:       payload.Address,
		Hours:         payload.DurationHours.String(),
		Cost:          pricing.FormatAmount(payload.Cost),
		RequestedAt:   payload.RequestedAt,
		SiteURL:       n.siteURL,
	}

	n.deliver(ctx, "request_confirmation", payload.RequestID, notify.RequestConfirmation, data)
	n.deliver(ctx, "new_request", payload.RequestID, notify.NewRequestNotification, data)
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, kind, requestID string, render func(notify.RequestEmail) (notify.Message, error), data notify.RequestEmail) {
	msg, err := render(data)
	if err == nil && n.sender != nil {
		err = n.sender.Send(ctx, msg)
	}
	if err != nil {
		n.metrics.RecordNotificationFailure(kind)
		n.logger.Error("failed to send email",
			zap.String("kind", kind),
			zap.String("request_id", requestID),
			zap.Error(err))
		return
	}
	n.logger.Info("email sent",
		zap.String("kind", kind),
		zap.String("request_id", requestID),
		zap.String("to", msg.To))
}

func (n *NotificationService) logEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("service_id", event.ServiceID),
		zap.Any("payload", event.Payload))
	return nil
}
