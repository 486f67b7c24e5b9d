package smtp

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"

	"github.com/go-blog-nosql/internal/config"
	"github.com/go-blog-nosql/internal/domain"
	"gopkg.in/gomail.v2"
)

// Mailer delivers mail over SMTP with STARTTLS.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (m *Mailer) Send(ctx context.Context, mail domain.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(m.from, mail)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		return classify(err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from string, mail domain.Mail) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", mail.To)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/html", mail.Body)
	return msg
}

// classify marks permanent (5xx) SMTP replies as undeliverable.
func classify(err error) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) && tpErr.Code >= 500 {
		return fmt.Errorf("%w: %v", domain.ErrUndeliverable, err)
	}
	return err
}
