package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

// sendMailHook allows tests to override SMTP sending behavior.
var sendMailHook = smtp.SendMail

// Email sends notifications via SMTP.
type Email struct {
	Host, User, Pass, From string
	Port                   int
}

// Name returns the notifier backend name.
func (e *Email) Name() string {
	_ = e
	return "Email"
}

// Send sends an email with the provided subject and body via SMTP.
func (e *Email) Send(ctx context.Context, to, subject, body string) error {
	_ = ctx
	addr := fmt.Sprintf("%s:%d", e.Host, e.Port)
	var auth smtp.Auth
	if e.User != "" {
		auth = smtp.PlainAuth("", e.User, e.Pass, e.Host)
	}
	msg := fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s", to, e.From, subject, body)
	return sendMailHook(addr, auth, e.From, []string{to}, []byte(msg))
}
