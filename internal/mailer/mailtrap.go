package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	From     address   `json:"from"`
	To       []address `json:"to"`
	Subject  string    `json:"subject"`
	HTML     string    `json:"html"`
	Category string    `json:"category,omitempty"`
}

// Mailtrap sends through the Mailtrap email sending HTTP API.
type Mailtrap struct {
	client *resty.Client
	url    string
	from   address
}

func NewMailtrap(url, token, fromEmail, fromName string) *Mailtrap {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &Mailtrap{
		client: client,
		url:    url,
		from:   address{Email: fromEmail, Name: fromName},
	}
}

func (m *Mailtrap) send(ctx context.Context, msg message, err error) error {
	if err != nil {
		return err
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(sendRequest{
			From:     m.from,
			To:       []address{{Email: msg.To}},
			Subject:  msg.Subject,
			HTML:     msg.HTML,
			Category: msg.Category,
		}).
		Post(m.url)
	if err != nil {
		return fmt.Errorf("mailtrap request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mailtrap send failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

func (m *Mailtrap) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	msg, err := verificationMessage(to, name, token)
	return m.send(ctx, msg, err)
}

func (m *Mailtrap) SendWelcomeEmail(ctx context.Context, to, name string) error {
	msg, err := welcomeMessage(to, name)
	return m.send(ctx, msg, err)
}

func (m *Mailtrap) SendPasswordResetEmail(ctx context.Context, to, resetURL string) error {
	msg, err := resetMessage(to, resetURL)
	return m.send(ctx, msg, err)
}

func (m *Mailtrap) SendResetSuccessEmail(ctx context.Context, to string) error {
	msg, err := resetSuccessMessage(to)
	return m.send(ctx, msg, err)
}
