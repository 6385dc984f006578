package notification

import (
	"context"

	"leadflow_backend/internal/notification/amqp"
	"leadflow_backend/internal/notification/line"
	"leadflow_backend/internal/notification/mail"
)

type lineChannel struct{ client *line.Client }

func (lineChannel) Name() string      { return "line" }
func (lineChannel) Accepts(Kind) bool { return true }
func (c lineChannel) Send(ctx context.Context, msg Message) error {
	return c.client.Push(ctx, msg.Text)
}

// LineChannel wraps a LINE client; nil when the client is not configured.
func LineChannel(client *line.Client) Channel {
	if client == nil {
		return nil
	}
	return lineChannel{client: client}
}

type mailChannel struct{ sender *mail.Sender }

func (mailChannel) Name() string           { return "smtp" }
func (mailChannel) Accepts(kind Kind) bool { return kind.IsDigest() }
func (c mailChannel) Send(ctx context.Context, msg Message) error {
	return c.sender.Send(ctx, msg.Subject, msg.Text)
}

// MailChannel wraps an SMTP sender; only digests are mailed.
func MailChannel(sender *mail.Sender) Channel {
	if sender == nil {
		return nil
	}
	return mailChannel{sender: sender}
}

type amqpChannel struct{ publisher *amqp.Publisher }

func (amqpChannel) Name() string      { return "amqp" }
func (amqpChannel) Accepts(Kind) bool { return true }
func (c amqpChannel) Send(ctx context.Context, msg Message) error {
	return c.publisher.Publish(ctx, string(msg.Kind), msg)
}

// AMQPChannel wraps a publisher; the routing key is the kind.
func AMQPChannel(publisher *amqp.Publisher) Channel {
	if publisher == nil {
		return nil
	}
	return amqpChannel{publisher: publisher}
}
