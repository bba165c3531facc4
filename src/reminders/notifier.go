// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package reminders

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

// A Message is a rendered reminder ready to be sent
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// A Notifier delivers reminder messages
type Notifier interface {
	// Send the given message. Send must return when ctx is done.
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the parameters of the SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// An SMTPNotifier sends reminders by email through an SMTP server
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPNotifier returns an SMTPNotifier for the given server
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
	}
}

// Send the given message by email.
//
// gomail does not support cancellation: if ctx is done first, Send
// returns ctx error and the connection is left to finish in background.
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	message := gomail.NewMessage()
	message.SetHeader("From", n.from)
	message.SetHeader("To", msg.To...)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/html", msg.HTML)

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(message)
	}()
	select {
	case err := <-done:
		return errors.Wrap(err, "unable to send reminder email")
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "reminder email not sent in time")
	}
}

// A LogNotifier only logs the messages it is given. It is used when no
// SMTP server is configured.
type LogNotifier struct{}

// Send logs the given message
func (LogNotifier) Send(ctx context.Context, msg Message) error {
	log.Info("Reminder message", "to", strings.Join(msg.To, ","), "subject", msg.Subject)
	return ctx.Err()
}

var _ Notifier = new(SMTPNotifier)
var _ Notifier = LogNotifier{}
