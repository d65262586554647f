// Package mailer sends transactional email (currently only the
// password-reset OTP) over SMTP.
package mailer

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Email is a single outbound message. TextBody is the plain-text
// alternative; HTMLBody, when set, is the primary part.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender is what handlers depend on. Tests substitute a recording
// fake; production uses *Mailer.
type Sender interface {
	Send(email Email) error
}

// Mailer sends email through an SMTP relay (Mailpit locally, SES or
// similar in production).
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	log      *zap.Logger
}

// New builds a Mailer. Host and from address are required; user/pass
// may be empty for unauthenticated local relays.
func New(host string, port int, user, pass, from, fromName string, logger *zap.Logger) (*Mailer, error) {
	if host == "" {
		return nil, fmt.Errorf("smtp host is empty")
	}
	if from == "" {
		return nil, fmt.Errorf("from address is empty")
	}
	return &Mailer{
		dialer:   gomail.NewDialer(host, port, user, pass),
		from:     from,
		fromName: fromName,
		log:      logger,
	}, nil
}

// Send delivers one message. Each call dials a fresh SMTP connection;
// volume here is a handful of OTP mails, not a campaign.
func (m *Mailer) Send(email Email) error {
	if email.To == "" {
		return fmt.Errorf("no recipient specified")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.TextBody != "" {
			msg.AddAlternative("text/plain", email.TextBody)
		}
	} else {
		msg.SetBody("text/plain", email.TextBody)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error("smtp send failed", zap.String("to", email.To), zap.Error(err))
		return err
	}
	return nil
}
