package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGrid struct {
	client *sendgrid.Client
}

func NewSendGrid(apiKey string) *SendGrid {
	return &SendGrid{client: sendgrid.NewSendClient(apiKey)}
}

func (s *SendGrid) Send(ctx context.Context, e Email) error {
	if err := validate(e); err != nil {
		return err
	}
	fromName, fromAddr := splitAddress(e.From)
	toName, toAddr := splitAddress(e.To)

	m := mail.NewV3MailInit(mail.NewEmail(fromName, fromAddr), e.Subject, mail.NewEmail(toName, toAddr), mail.NewContent("text/html", e.HTML))
	if e.ReplyTo != "" {
		replyName, replyAddr := splitAddress(e.ReplyTo)
		m.SetReplyTo(mail.NewEmail(replyName, replyAddr))
	}

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid api error: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}
