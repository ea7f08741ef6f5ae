// Package mailer sends transactional emails over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"

	"github.com/dan47bennett/typescript-reddit/internal/logger"
)

//go:generate mockgen -source=mailer.go -destination=mock_sender.go -package=mailer

// Sender delivers a prepared message.
type Sender interface {
	Send(msg *goemail.Message) error
}

// Config describes the SMTP account used for outgoing mail.
type Config struct {
	Host     string
	User     string
	Password string
	From     string
}

// Mailer sends HTML emails from a fixed address. A Mailer without an SMTP
// host is disabled and only logs what it would have sent.
type Mailer struct {
	sender      Sender
	mailName    string
	mailAddress string
	disabled    bool
}

func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" {
		logger.Log.Warnw("smtp host not configured, emails will be logged instead of sent")
		return &Mailer{disabled: true}, nil
	}

	a, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("parse from address: %w", err)
	}

	u := url.URL{
		Scheme: "smtps",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host,
	}
	client, err := goemail.NewSMTP(u.String(), &tls.Config{ServerName: u.Hostname()})
	if err != nil {
		return nil, fmt.Errorf("init smtp: %w", err)
	}

	logger.Log.Infow("mail configured", "host", cfg.Host, "from", a.Address)

	return NewWithSender(client, a.Name, a.Address), nil
}

func NewWithSender(sender Sender, name, address string) *Mailer {
	return &Mailer{
		sender:      sender,
		mailName:    name,
		mailAddress: address,
	}
}

// Send delivers an HTML email to a single recipient.
func (m *Mailer) Send(ctx context.Context, to, subject, html string) error {
	if m.disabled {
		logger.Log.Infow("email not sent, mailer disabled", "to", to, "subject", subject, "body", html)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := goemail.NewHTMLMessage(m.mailAddress, subject, html)
	msg.SetName(m.mailName)
	msg.AddTo(to)

	if err := m.sender.Send(msg); err != nil {
		logger.Log.Errorw("failed to send email", "to", to, "subject", subject, "err", err)
		return err
	}
	return nil
}
