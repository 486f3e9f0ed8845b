package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"

	"medibook/pkg/logger"

	"gopkg.in/gomail.v2"
)

var ErrNoRecipient = errors.New("email has no recipient")

type Email struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *logger.Logger
}

func NewSMTPMailer(cfg SMTPConfig, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

// Send dials the server for every message. The dialer has no context
// support, so ctx is only checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if strings.TrimSpace(email.To) == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", email.To, err)
	}

	m.log.Debug("Email sent", "to", email.To, "subject", email.Subject)
	return nil
}

// IsTransient reports whether a failed send may succeed later: network
// failures, timeouts and SMTP 4xx replies.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code >= 400 && protoErr.Code < 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
