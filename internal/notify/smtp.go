package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPNotifier authenticates as user and sends with user as the From
// address.
func NewSMTPNotifier(host string, port int, user, password string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   user,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	// gomail has no context support; abandon the dial when ctx ends.
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.dialer.DialAndSend(m)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send mail to %s: %w", msg.To, ctx.Err())
	}
}
