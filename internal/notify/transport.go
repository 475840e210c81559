package notify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/xpertshub/internal/config"
)

// NewSender picks the transport named by cfg.Notification.Transport.
// The returned closer releases transport resources.
func NewSender(cfg *config.Config, logger *zap.Logger) (Sender, func(), error) {
	switch cfg.Notification.Transport {
	case "", "log":
		return NewLogSender(logger), func() {}, nil
	case "mailgun":
		sender, err := NewMailgunSender(cfg.Mailgun)
		if err != nil {
			return nil, nil, err
		}
		return sender, func() {}, nil
	case "queue":
		sender, err := NewQueueSender(cfg.Queue)
		if err != nil {
			return nil, nil, err
		}
		return sender, sender.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown notification transport %q", cfg.Notification.Transport)
	}
}
