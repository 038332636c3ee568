// Package mailer delivers customer email over plain SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/smartfixosapp/smartfixos/internal/core/ports"
)

// SMTPSender implements EmailSender over net/smtp. Callers bound each Send
// with a context timeout; the dial itself is synchronous, so the handshake is
// pushed into a goroutine and abandoned when the context expires.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPSender creates a sender for the given SMTP endpoint.
// Auth may be nil for unauthenticated relays.
func NewSMTPSender(host string, port int, from, username, password string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
	}
}

// Send delivers one message. Returns the SMTP error as-is; the caller decides
// whether failures matter.
func (s *SMTPSender) Send(ctx context.Context, msg ports.EmailMessage) error {
	done := make(chan error, 1)

	go func() {
		done <- smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, buildMessage(s.from, msg))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from string, msg ports.EmailMessage) []byte {
	var b strings.Builder

	sender := from
	if msg.FromName != "" {
		sender = fmt.Sprintf("%s <%s>", msg.FromName, from)
	}

	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	return []byte(b.String())
}
