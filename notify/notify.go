// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify delivers voter password e-mails.
package notify

import (
	"context"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"
)

// Mailer sends the generated voter password to an approved voter.
type Mailer interface {
	SendVoterPassword(ctx context.Context, to, password string) error
}

// NopMailer drops every message. Used when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) SendVoterPassword(context.Context, string, string) error { return nil }

const (
	senderName      = "Blockchain Voting System"
	passwordSubject = "Your Voting System Password"
)

var passwordBody = template.Must(template.New("password").Parse(`<p>Hello,</p>
<p>Your voter registration has been <strong>approved</strong>.</p>
<p><strong>Your login password:</strong> {{.}}</p>
<p>Please keep it safe. You will need this along with your MetaMask wallet to vote.</p>
<br>
<p>Blockchain Voting System</p>
`))

// SMTPMailer sends HTML mail through an SMTP relay. PLAIN auth is used
// when a username is configured; port 465 uses implicit TLS, other ports
// STARTTLS when offered.
type SMTPMailer struct {
	From string

	send func(ctx context.Context, msgs ...*mail.Msg) error
}

func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	if from == "" {
		from = username
	}

	opts := []mail.Option{mail.WithPort(port), mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTPMailer{From: from, send: client.DialAndSendWithContext}, nil
}

func (m *SMTPMailer) SendVoterPassword(ctx context.Context, to, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := m.passwordMessage(to, password)
	if err != nil {
		return err
	}

	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send password mail to %s: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) passwordMessage(to, password string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(senderName, m.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(passwordSubject)
	msg.SetDate()
	if err := msg.SetBodyHTMLTemplate(passwordBody, password); err != nil {
		return nil, fmt.Errorf("failed to render mail: %w", err)
	}
	return msg, nil
}
