package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/studyhub/course-tracker-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAILER
// ══════════════════════════════════════════════════════════════════════════════

// Mailer sends transactional mail for the local identity provider.
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, username, resetLink string) error
}

// ──────────────────────────────────────────────────────────────────────────────
// SendGrid backend
// ──────────────────────────────────────────────────────────────────────────────

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGridMailer sends mail through the SendGrid API. Transient
// failures (network errors, 5xx, 429) are retried with backoff; a 4xx
// rejection is final. Mail is the one outgoing call that is safe to
// retry here: the worst case is a duplicate reset link.
type SendGridMailer struct {
	key     string
	from    *sgmail.Email
	appName string
	retrier *retry.Retrier
	logger  *slog.Logger
}

// NewSendGridMailer creates a SendGrid-backed Mailer.
func NewSendGridMailer(apiKey, fromName, fromAddress, appName string, logger *slog.Logger) *SendGridMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendGridMailer{
		key:     apiKey,
		from:    sgmail.NewEmail(fromName, fromAddress),
		appName: appName,
		retrier: retry.EmailRetrier(),
		logger:  logger,
	}
}

// SendPasswordReset sends the reset link to the account's address.
func (m *SendGridMailer) SendPasswordReset(ctx context.Context, toEmail, username, resetLink string) error {
	subject := fmt.Sprintf("[%s] Password reset", m.appName)
	text := fmt.Sprintf(
		"Hi %s,\n\nA password reset was requested for your account. "+
			"Open the link below to choose a new password:\n\n%s\n\n"+
			"If you did not request this, you can ignore this message.\n",
		username, resetLink,
	)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>A password reset was requested for your account. "+
			"Open the link below to choose a new password:</p>"+
			"<p><a href=%q>%s</a></p>"+
			"<p>If you did not request this, you can ignore this message.</p>",
		username, resetLink, resetLink,
	)

	p := sgmail.NewPersonalization()
	p.Subject = subject
	p.AddTos(sgmail.NewEmail(username, toEmail))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(
		sgmail.NewContent("text/plain", text),
		sgmail.NewContent("text/html", html),
	)

	body := sgmail.GetRequestBody(msg)

	return m.retrier.Do(ctx, func(context.Context) error {
		req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
		req.Method = http.MethodPost
		req.Body = body

		resp, err := sendgrid.API(req)
		if err != nil {
			return retry.Retryable(fmt.Errorf("sendgrid: %w", err))
		}
		if resp.StatusCode >= http.StatusBadRequest {
			m.logger.Error("sendgrid rejected message",
				"status", resp.StatusCode,
				"body", resp.Body,
			)
			sendErr := fmt.Errorf("sendgrid: status %d", resp.StatusCode)
			if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
				return retry.Retryable(sendErr)
			}
			return retry.Permanent(sendErr)
		}
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Console backend
// ──────────────────────────────────────────────────────────────────────────────

// ConsoleMailer writes mail to the log instead of sending it. Used in
// development and in tests.
type ConsoleMailer struct {
	logger *slog.Logger
}

// NewConsoleMailer creates a log-only Mailer.
func NewConsoleMailer(logger *slog.Logger) *ConsoleMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleMailer{logger: logger}
}

// SendPasswordReset logs the reset link.
func (m *ConsoleMailer) SendPasswordReset(_ context.Context, toEmail, username, resetLink string) error {
	m.logger.Info("password reset mail",
		"to", toEmail,
		"username", username,
		"link", resetLink,
	)
	return nil
}
