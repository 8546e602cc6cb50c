// Package mailer sends contact messages over SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"myblog/internal/feature/contact/usecase"
)

// Config configures the SMTP connection.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
	// Suppress builds messages but only logs them.
	Suppress bool
	Timeout  time.Duration
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer delivers messages with go-mail.
type SMTPMailer struct {
	client   sender
	suppress bool
}

var _ usecase.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer. With Suppress set or no host configured, no connection is
// ever made.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Suppress || cfg.Host == "" {
		return &SMTPMailer{suppress: true}, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}
	if !cfg.UseTLS {
		opts[1] = mail.WithTLSPortPolicy(mail.TLSOpportunistic)
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return &SMTPMailer{client: client}, nil
}

// Send implements usecase.Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg usecase.Message) error {
	gm, err := BuildMessage(msg)
	if err != nil {
		return err
	}

	if m.suppress {
		slog.Info("mail suppressed", "from", msg.From, "to", msg.To, "subject", msg.Subject, "body_bytes", len(msg.Body))
		return nil
	}

	if err := m.client.DialAndSendWithContext(ctx, gm); err != nil {
		return fmt.Errorf("smtp delivery failed: %w", err)
	}
	slog.Info("mail sent", "to", msg.To, "subject", msg.Subject)
	return nil
}

// BuildMessage converts msg into a plain-text go-mail message.
func BuildMessage(msg usecase.Message) (*mail.Msg, error) {
	gm := mail.NewMsg()
	if err := gm.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := gm.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if err := gm.ReplyTo(msg.From); err != nil {
		return nil, fmt.Errorf("invalid reply-to address: %w", err)
	}
	gm.Subject(msg.Subject)
	gm.SetBodyString(mail.TypeTextPlain, msg.Body)
	return gm, nil
}
