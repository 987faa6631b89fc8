// Package notify builds overdue and due-soon alerts and delivers them by log and e-mail.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/date"
	"github.com/theirongolddev/fintrack/internal/debt"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/money"
	"github.com/theirongolddev/fintrack/internal/subscription"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Message is one alert.
type Message struct {
	Kind    string    `json:"kind"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	At      time.Time `json:"at"`
}

// Notifier delivers messages.
type Notifier interface {
	Notify(ctx context.Context, msgs ...Message) error
}

// FromNotice builds a message from a subscription evaluation notice.
func FromNotice(n subscription.Notice, at time.Time) Message {
	return Message{
		Kind:    string(n.Kind),
		Subject: n.Message(),
		Body:    fmt.Sprintf("%s was found overdue on %s (%d delay(s) recorded).", n.Name, n.On.Display(), n.Times),
		At:      at,
	}
}

// FromDebt builds a message for a debt that is overdue or nearing its due
// date. It reports false for debts in any other state.
func FromDebt(d model.Debt, today date.Date, at time.Time) (Message, bool) {
	state := debt.Classify(d, today)
	var subject string
	switch state {
	case debt.StateOverdue:
		subject = fmt.Sprintf("Debt '%s' is overdue", d.Description)
	case debt.StateNearingDue:
		subject = fmt.Sprintf("Debt '%s' is due soon", d.Description)
	default:
		return Message{}, false
	}
	body := fmt.Sprintf("%s remaining of %s, due %s.",
		money.FormatBRL(debt.Balance(d)), money.FormatBRL(d.TotalAmount), date.DisplayString(d.DueDate))
	return Message{Kind: string(state), Subject: subject, Body: body, At: at}, true
}

// Log writes messages as structured log entries.
type Log struct {
	log *logrus.Logger
}

// NewLog creates a log notifier.
func NewLog(log *logrus.Logger) *Log { return &Log{log: log} }

// Notify implements Notifier.
func (l *Log) Notify(_ context.Context, msgs ...Message) error {
	for _, m := range msgs {
		l.log.WithField("kind", m.Kind).Warn(m.Subject)
	}
	return nil
}

// Email sends a digest of messages over SMTP.
type Email struct {
	cfg  config.NotifyConfig
	log  *logrus.Logger
	send func(e *email.Email, addr string, a smtp.Auth) error
}

// NewEmail creates an SMTP notifier from cfg.
func NewEmail(cfg config.NotifyConfig, log *logrus.Logger) *Email {
	return &Email{cfg: cfg, log: log, send: (*email.Email).Send}
}

// Notify implements Notifier. All messages go out as one e-mail.
func (s *Email) Notify(_ context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = s.cfg.To
	if len(msgs) == 1 {
		e.Subject = msgs[0].Subject
	} else {
		e.Subject = fmt.Sprintf("fintrack: %d alerts", len(msgs))
	}

	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "- %s\n  %s\n", m.Subject, m.Body)
	}
	b.WriteString("\nSent by fintrack\n")
	e.Text = []byte(b.String())

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.log.Errorf("Failed to send alert e-mail to %v: %v", e.To, err)
		return fmt.Errorf("sending alert e-mail: %w", err)
	}

	s.log.Infof("Alert e-mail sent to %v: %s", e.To, e.Subject)
	return nil
}

// Multi fans messages out to every notifier and joins their errors.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, msgs ...Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, msgs...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig returns the log notifier, plus e-mail when configured.
func FromConfig(cfg config.Config, log *logrus.Logger) Notifier {
	m := Multi{NewLog(log)}
	if cfg.NotifyReady() {
		m = append(m, NewEmail(cfg.Notify, log))
	}
	return m
}
