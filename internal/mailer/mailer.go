// Package mailer delivers account notifications. Delivery is an external
// concern; callers treat failures as non-fatal.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"
)

type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendWelcomeEmail(ctx context.Context, to, name string) error
	SendPasswordResetEmail(ctx context.Context, to, resetURL string) error
	SendResetSuccessEmail(ctx context.Context, to string) error
}

type message struct {
	To       string
	Subject  string
	Category string
	HTML     string
}

var templates = template.Must(template.New("verify").Parse(
	`<p>Hi {{.Name}},</p><p>Your verification code is <strong>{{.Token}}</strong>.</p>`,
))

func init() {
	template.Must(templates.New("welcome").Parse(
		`<p>Welcome {{.Name}}!</p><p>Your account is verified. Enjoy browsing the mall.</p>`,
	))
	template.Must(templates.New("reset").Parse(
		`<p>We received a request to reset your password.</p><p><a href="{{.URL}}">Reset your password</a></p><p>If you did not ask for this, ignore this email.</p>`,
	))
	template.Must(templates.New("reset-success").Parse(
		`<p>Your password was reset successfully.</p>`,
	))
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return buf.String(), nil
}

func verificationMessage(to, name, token string) (message, error) {
	html, err := render("verify", map[string]string{"Name": name, "Token": token})
	return message{To: to, Subject: "Verify your email", Category: "Email verification", HTML: html}, err
}

func welcomeMessage(to, name string) (message, error) {
	html, err := render("welcome", map[string]string{"Name": name})
	return message{To: to, Subject: "Welcome to the mall", Category: "Welcome", HTML: html}, err
}

func resetMessage(to, resetURL string) (message, error) {
	html, err := render("reset", map[string]string{"URL": resetURL})
	return message{To: to, Subject: "Reset your password", Category: "Reset Password", HTML: html}, err
}

func resetSuccessMessage(to string) (message, error) {
	html, err := render("reset-success", nil)
	return message{To: to, Subject: "Password reset successfully", Category: "Password Reset", HTML: html}, err
}

// LogMailer writes notifications to the log instead of sending them. Used
// when no mail provider is configured.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerificationEmail(_ context.Context, to, name, token string) error {
	m.logger.Info().Str("to", to).Str("name", name).Str("token", token).Msg("Verification email (not sent)")
	return nil
}

func (m *LogMailer) SendWelcomeEmail(_ context.Context, to, name string) error {
	m.logger.Info().Str("to", to).Str("name", name).Msg("Welcome email (not sent)")
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(_ context.Context, to, resetURL string) error {
	m.logger.Info().Str("to", to).Str("url", resetURL).Msg("Password reset email (not sent)")
	return nil
}

func (m *LogMailer) SendResetSuccessEmail(_ context.Context, to string) error {
	m.logger.Info().Str("to", to).Msg("Password reset confirmation (not sent)")
	return nil
}
