package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"testing"

	"medibook/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "mailbox busy", err: &textproto.Error{Code: 450, Msg: "mailbox unavailable"}, want: true},
		{name: "no such user", err: fmt.Errorf("send: %w", &textproto.Error{Code: 550, Msg: "no such user"}), want: false},
		{name: "dial failure", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "other", err: errors.New("bad address"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestSend_RequiresRecipient(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 2525, From: "no-reply@medibook.local"}, logger.Discard())
	err := m.Send(context.Background(), Email{Subject: "hi"})
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestSend_CancelledContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 2525}, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Send(ctx, Email{To: "a@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
