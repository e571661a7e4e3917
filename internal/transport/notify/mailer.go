// Package notify delivers plain text notifications by email and to a team chat.
package notify

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// ErrDeliveryUnknown is returned when ctx ends while the SMTP exchange is in flight. The message may still
// arrive, so a retry can produce a duplicate: email delivery is at least once.
var ErrDeliveryUnknown = errors.New("email delivery outcome unknown")

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends email through SMTP. A connection is dialed per message.
type Mailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send delivers a plain text message. Nothing is dialed when ctx is already done. The dial is bounded by the
// gomail dial timeout, the exchange after it cannot be interrupted: on ctx cancellation Send returns
// ErrDeliveryUnknown and the exchange finishes in the background.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "send email to %s", to)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("send email to %s: %w: %w", to, ErrDeliveryUnknown, ctx.Err())
	case err := <-done:
		return errors.Wrapf(err, "send email to %s", to)
	}
}

// LogMailer writes messages to the log instead of sending them. Used when no SMTP host is configured.
type LogMailer struct {
	l *logrus.Entry
}

func NewLogMailer(l *logrus.Logger) *LogMailer {
	return &LogMailer{l: l.WithFields(logrus.Fields{"component": "notify", "module": "log_mailer"})}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.l.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"bodyLen": len(body),
	}).Info("email not sent, smtp is not configured")
	return nil
}
