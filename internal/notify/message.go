package notify

import (
	"context"
	"errors"
	"strings"
)

// Message is a rendered email. It is also the JSON job placed on the email queue.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// Validate rejects messages that no transport could deliver.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("message has no recipient")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("message has no subject")
	}
	if m.Text == "" && m.HTML == "" {
		return errors.New("message has no body")
	}
	return nil
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
