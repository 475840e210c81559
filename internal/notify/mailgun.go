package notify

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"github.com/spec-kit/xpertshub/internal/config"
)

const mailgunTimeout = 10 * time.Second

// MailgunSender delivers messages through the Mailgun API.
type MailgunSender struct {
	client *mg.MailgunImpl
	sender string
}

// NewMailgunSender validates credentials and builds a client.
func NewMailgunSender(cfg config.MailgunConfig) (*MailgunSender, error) {
	if cfg.Domain == "" || cfg.APIKey == "" || cfg.Sender == "" {
		return nil, errors.New("mailgun not configured")
	}
	return &MailgunSender{
		client: mg.NewMailgun(cfg.Domain, cfg.APIKey),
		sender: cfg.Sender,
	}, nil
}

func (m *MailgunSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	message := m.client.NewMessage(m.sender, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}

	c, cancel := context.WithTimeout(ctx, mailgunTimeout)
	defer cancel()
	_, _, err := m.client.Send(c, message)
	return err
}
