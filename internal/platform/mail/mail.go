// Copyright (c) 2026 NeverBeen. All rights reserved.
// Author: dev@neverbeen.app

/*
Package mail provides outbound transactional email delivery.

It wraps gopkg.in/gomail.v2 behind a small [Sender] interface so that
services depending on mail delivery (account verification, password resets)
can be unit-tested with an in-memory fake.

Delivery is synchronous: callers decide how a failed send affects the
surrounding operation (registration rolls the new account back, for example).
*/
package mail

import (
	"fmt"
	"log/slog"

	gomail "gopkg.in/gomail.v2"
)

// Sender delivers a single HTML email to one recipient.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPSender is the production [Sender] backed by an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

// NewSMTPSender builds a sender that dials the given SMTP relay per message.
//
// # Parameters
//   - host, port: SMTP relay address.
//   - username, password: Relay credentials.
//   - from: The From header used on every outbound message.
//   - logger: Structured logger for delivery events.
func NewSMTPSender(host string, port int, username, password, from string, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		logger: logger,
	}
}

// Send composes and delivers one HTML message.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", s.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(message); err != nil {
		s.logger.Error("mail_delivery_failed",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.Any("error", err),
		)
		return fmt.Errorf("mail: delivery to %s failed: %w", to, err)
	}

	s.logger.Info("mail_delivered",
		slog.String("to", to),
		slog.String("subject", subject),
	)

	return nil
}
