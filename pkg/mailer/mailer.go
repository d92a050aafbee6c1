package mailer

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"whitelotus/pkg/config"
)

// Email is one outbound transactional message.
type Email struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, e Email) error
}

// New picks the provider named in cfg.Provider. Unknown or unconfigured
// providers fall back to the log sender so local dev never needs API keys.
func New(cfg config.MailConfig) Sender {
	switch strings.ToLower(cfg.Provider) {
	case "sendgrid":
		if cfg.SendGridAPIKey != "" {
			return NewSendGrid(cfg.SendGridAPIKey)
		}
		log.Printf("mailer: SENDGRID_API_KEY missing, falling back to log sender")
	case "resend":
		if cfg.ResendAPIKey != "" {
			return NewResend(cfg.ResendAPIKey, "")
		}
		log.Printf("mailer: RESEND_API_KEY missing, falling back to log sender")
	}
	return LogSender{}
}

// LogSender prints messages instead of delivering them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, e Email) error {
	log.Printf("mailer: (log) to=%s reply_to=%s subject=%q bytes=%d", e.To, e.ReplyTo, e.Subject, len(e.HTML))
	return nil
}

func validate(e Email) error {
	if strings.TrimSpace(e.To) == "" {
		return fmt.Errorf("missing recipient")
	}
	if strings.TrimSpace(e.From) == "" {
		return fmt.Errorf("missing sender")
	}
	return nil
}

// splitAddress parses "Name <addr>" and bare addresses.
func splitAddress(s string) (name, addr string) {
	a, err := mail.ParseAddress(s)
	if err != nil {
		return "", strings.TrimSpace(s)
	}
	return a.Name, a.Address
}
