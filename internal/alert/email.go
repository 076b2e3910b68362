package alert

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Email sends down-alerts over SMTP to the owner's address.
type Email struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmail(host string, port int, username, password, from string) *Email {
	if host == "" || from == "" {
		return nil
	}
	return &Email{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (e *Email) Send(ctx context.Context, contact, url, reason string) error {
	if e == nil || e.dialer == nil {
		return errors.New("email disabled")
	}
	if contact == "" {
		return errors.New("no recipient address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", e.from)
	msg.SetHeader("To", contact)
	msg.SetHeader("Subject", "Website Down Alert")
	msg.SetBody("text/plain", fmt.Sprintf(
		"ALERT: your website %s is down.\n\nReason: %s\n", url, reason))

	// gomail has no context support; run the dial in a goroutine so the
	// caller's alert timeout still applies.
	done := make(chan error, 1)
	go func() { done <- e.dialer.DialAndSend(msg) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
