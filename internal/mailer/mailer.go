package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Mailer delivers invitation messages to annotators.
type Mailer interface {
	SendInvite(ctx context.Context, email string, taskID uuid.UUID) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTP(host, port, from, username, password string) *SMTPMailer {
	m := &SMTPMailer{
		addr: host + ":" + port,
		from: from,
	}
	if username != "" {
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

func (m *SMTPMailer) SendInvite(ctx context.Context, email string, taskID uuid.UUID) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: You have been invited to an annotation task\r\n\r\n"+
			"You have been assigned annotation work. Log in with this address to start on task %s.\r\n",
		m.from, email, taskID,
	)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send invite to %s: %w", email, err)
	}
	return nil
}

// LogMailer logs invitations instead of sending them; used in dev and
// tests when no SMTP relay is configured.
type LogMailer struct{}

func NewLog() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendInvite(ctx context.Context, email string, taskID uuid.UUID) error {
	logrus.WithFields(logrus.Fields{
		"email": email,
		"task":  taskID,
	}).Info("invitation mail (log only)")
	return nil
}
