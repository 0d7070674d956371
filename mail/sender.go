package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"

	"github.com/actsofsharing/actsofsharing-api/logger"
)

// Sender delivers one HTML email. Controllers depend on this interface
// so tests can substitute a double and so delivery failures stay
// decoupled from the domain operation that triggered them.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

type MailgunSender struct {
	mg   *mailgun.MailgunImpl
	from string
}

func NewMailgunSender(domain, apiKey, from string) *MailgunSender {
	return &MailgunSender{
		mg:   mailgun.NewMailgun(domain, apiKey),
		from: from,
	}
}

// Send delivers the message, retrying up to 3 times with exponential
// backoff before giving up.
func (s *MailgunSender) Send(ctx context.Context, to, subject, html string) error {
	m := s.mg.NewMessage(s.from, subject, "", to)
	m.SetHtml(html)

	maxAttempts := 3
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, _, err := s.mg.Send(sendCtx, m)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Log.Warn("email send attempt failed",
			zap.String("to", to),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < maxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("sending email to %s: %w", to, lastErr)
}

// Noop is used when Mailgun is not configured; sends are dropped with a
// log line so local development works without credentials.
type Noop struct{}

func (Noop) Send(_ context.Context, to, subject, _ string) error {
	logger.Log.Info("email delivery disabled, dropping message",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
