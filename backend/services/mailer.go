package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"arnhub/backend/config"

	"github.com/wneessen/go-mail"
)

// ErrMailDisabled is returned by LogNotifier: the message was logged but
// nobody received it.
var ErrMailDisabled = errors.New("mail delivery disabled")

// Notifier delivers plain-text email.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewNotifier returns an SMTP notifier when SMTP_HOST is set and a
// logging one otherwise.
func NewNotifier(cfg *config.Config, logger *log.Logger) Notifier {
	if cfg.SMTPHost == "" {
		return &LogNotifier{Logger: logger}
	}
	return &SMTPNotifier{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		Sender:   cfg.MailSender,
	}
}

type SMTPNotifier struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.Sender); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(n.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if n.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.Username),
			mail.WithPassword(n.Password),
		)
	}

	client, err := mail.NewClient(n.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogNotifier writes messages to the log instead of sending them. Send
// always reports ErrMailDisabled so callers treat the mail as undelivered.
type LogNotifier struct {
	Logger *log.Logger
}

func (n *LogNotifier) Send(_ context.Context, to, subject, _ string) error {
	n.Logger.Printf("mail to=%s subject=%q (smtp disabled, body not logged)", to, subject)
	return ErrMailDisabled
}
