// Package mail sends plain-text digests over SMTP.
package mail

import (
	"context"
	"fmt"
	"net"
	"time"

	"leadflow_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers to a fixed recipient list.
type Sender struct {
	host       string
	port       int
	username   string
	password   string
	from       string
	recipients []string
}

// NewSender returns nil when SMTP is not configured.
func NewSender(cfg config.SMTPConfig) *Sender {
	if !cfg.IsSMTPEnabled() {
		return nil
	}
	return &Sender{
		host:       cfg.GetSMTPHost(),
		port:       cfg.GetSMTPPort(),
		username:   cfg.GetSMTPUsername(),
		password:   cfg.GetSMTPPassword(),
		from:       cfg.GetSMTPFrom(),
		recipients: cfg.GetSMTPRecipients(),
	}
}

func (s *Sender) message(subject, body string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(s.recipients...); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)
	return msg, nil
}

// Send mails subject and body to every recipient.
func (s *Sender) Send(ctx context.Context, subject, body string) error {
	if s == nil {
		return nil
	}
	msg, err := s.message(subject, body)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
