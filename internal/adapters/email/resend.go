package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type resendMailer struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

func newResendMailer(apiKey, from string, logger *slog.Logger) *resendMailer {
	return &resendMailer{client: resend.NewClient(apiKey), from: from, logger: logger}
}

func (m *resendMailer) Send(ctx context.Context, to, subject, html, text string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			m.logger.WarnContext(ctx, "resend rate limit exceeded",
				"limit", rateLimitErr.Limit, "remaining", rateLimitErr.Remaining, "reset", rateLimitErr.Reset)
			return fmt.Errorf("email rate limit exceeded (resets in %s seconds): %w", rateLimitErr.Reset, err)
		}
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	m.logger.InfoContext(ctx, "email sent", "provider", "resend", "message_id", sent.Id)
	return nil
}
