// Package mailer delivers transactional email: verification codes, recovery
// codes and lock-out notices.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dmitrijs2005/deliverynotes/internal/logging"
	"github.com/wneessen/go-mail"
)

// SMTPConfig describes the outgoing server. Empty User disables authentication.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Attempts uint
	Delay    time.Duration
}

var newSMTPClient = func(c SMTPConfig) (sender, error) {
	opts := []mail.Option{
		mail.WithPort(c.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if c.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.User),
			mail.WithPassword(c.Password),
		)
	}
	return mail.NewClient(c.Host, opts...)
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer sends HTML mail through an SMTP relay.
type SMTPMailer struct {
	client sender
	cfg    SMTPConfig
	logger logging.Logger
}

func NewSMTPMailer(cfg SMTPConfig, logger logging.Logger) (*SMTPMailer, error) {
	client, err := newSMTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	return &SMTPMailer{client: client, cfg: cfg, logger: logger.With("module", "mailer")}, nil
}

func (m *SMTPMailer) message(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

// Send delivers one message, retrying transport failures. Address errors are not retried.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg, err := m.message(to, subject, body)
	if err != nil {
		return err
	}

	err = retry.Do(
		func() error { return m.client.DialAndSendWithContext(ctx, msg) },
		retry.Context(ctx),
		retry.Attempts(m.cfg.Attempts),
		retry.Delay(m.cfg.Delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			m.logger.Warn(ctx, "send failed, retrying", "to", to, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Info(ctx, "mail sent", "to", to, "subject", subject)
	return nil
}

// LogMailer only logs. It is used when no SMTP host is configured.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info(ctx, "mail not sent, smtp disabled", "to", to, "subject", subject)
	m.logger.Debug(ctx, "unsent mail body", "to", to, "body", body)
	return nil
}
