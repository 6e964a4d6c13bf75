// Package notify delivers office notifications for tenant submissions.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrNoRecipient is returned when a message has no To address.
var ErrNoRecipient = errors.New("notification has no recipient")

// Message is a plain-text notification email.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Text    string
}

// Notifier sends notifications.
type Notifier interface {
	Notify(ctx context.Context, m Message) error
}

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGrid sends notifications through the SendGrid v3 API.
type SendGrid struct {
	client   sender
	from     string
	fromName string
}

// NewSendGrid returns a SendGrid notifier sending as from.
func NewSendGrid(apiKey, from string) *SendGrid {
	return &SendGrid{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: "UPH Website",
	}
}

func (s *SendGrid) Notify(ctx context.Context, m Message) error {
	if m.To == "" {
		return ErrNoRecipient
	}

	resp, err := s.client.SendWithContext(ctx, s.build(m))
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sending mail: sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (s *SendGrid) build(m Message) *mail.SGMailV3 {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail("", m.To)
	htmlBody := "<p>" + strings.ReplaceAll(html.EscapeString(m.Text), "\n", "<br>") + "</p>"

	msg := mail.NewSingleEmail(from, m.Subject, to, m.Text, htmlBody)
	if m.ReplyTo != "" {
		msg.SetReplyTo(mail.NewEmail("", m.ReplyTo))
	}
	return msg
}

// Log writes notifications to the log instead of sending them. It is used
// when no mail provider is configured.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(_ context.Context, m Message) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification not sent, mail is not configured",
		"to", m.To, "subject", m.Subject, "bytes", len(m.Text))
	return nil
}
