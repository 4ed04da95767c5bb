package service

import (
	"context"
	"fmt"
	"strings"

	"barylstyle/contacts-api/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a single HTML e-mail
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if strings.EqualFold(to, m.from) {
		return fmt.Errorf("refusing to send mail to the sender address %s", to)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	// gomail has no context support, so the send is raced against ctx
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer only logs outgoing mail. Used when mail.enabled is false so
// verification links can be picked up from the logs during development.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	zap.L().Info("Mail delivery disabled, logging message instead",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}

// VerificationLink builds the link a user follows to verify their address
func VerificationLink(publicURL, token string) string {
	return strings.TrimSuffix(publicURL, "/") + "/api/users/verify/" + token
}

// NewVerificationMail prepares the verification e-mail for an address
func NewVerificationMail(publicURL, sendTo, token string) *MailJob {
	link := VerificationLink(publicURL, token)

	return &MailJob{
		To:      sendTo,
		Subject: "Please verify your email",
		Body:    fmt.Sprintf("Click <a href='%v'>here</a> to verify your email.<br><br>Or open this link: %v", link, link),
	}
}
