// Package mailer delivers transactional email through SendGrid. Storefront
// notifications are dispatched fire-and-forget: a failed send is logged and
// never reaches the buyer's request.
package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

type SendGrid struct {
	APIKey   string
	From     string
	FromName string
}

func (s *SendGrid) Send(ctx context.Context, to, subject, html string) error {
	if s.APIKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if to == "" {
		return fmt.Errorf("to address is empty")
	}

	from := mail.NewEmail(s.FromName, s.From)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), "", html)

	client := sendgrid.NewSendClient(s.APIKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}
