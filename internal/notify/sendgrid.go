package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridConfig holds SendGrid API settings.
type SendGridConfig struct {
	APIKey   string
	From     string
	FromName string
	Sandbox  bool
}

// SendGrid sends messages through the SendGrid v3 mail API.
type SendGrid struct {
	client  *sendgrid.Client
	from    *mail.Email
	sandbox bool
}

// NewSendGrid creates a SendGrid notifier.
func NewSendGrid(cfg SendGridConfig) *SendGrid {
	return &SendGrid{
		client:  sendgrid.NewSendClient(cfg.APIKey),
		from:    mail.NewEmail(cfg.FromName, cfg.From),
		sandbox: cfg.Sandbox,
	}
}

// Notify sends m.
func (s *SendGrid) Notify(ctx context.Context, m Message) error {
	msg := s.build(m)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sending via sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (s *SendGrid) build(m Message) *mail.SGMailV3 {
	to := mail.NewEmail(m.ToName, m.To)
	msg := mail.NewSingleEmail(s.from, m.Subject, to, m.Body, "")
	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	return msg
}
