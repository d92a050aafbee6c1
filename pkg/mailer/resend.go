package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const resendBaseURL = "https://api.resend.com"

type Resend struct {
	client *resty.Client
}

// NewResend builds a Resend API client. baseURL overrides the public endpoint
// (tests point it at httptest servers).
func NewResend(apiKey, baseURL string) *Resend {
	if baseURL == "" {
		baseURL = resendBaseURL
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	return &Resend{client: c}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (r *Resend) Send(ctx context.Context, e Email) error {
	if err := validate(e); err != nil {
		return err
	}
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(resendRequest{From: e.From, To: []string{e.To}, ReplyTo: e.ReplyTo, Subject: e.Subject, HTML: e.HTML}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("resend api error: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	return nil
}
