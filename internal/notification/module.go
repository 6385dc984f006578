package notification

import (
	"context"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/notification/amqp"
	"leadflow_backend/internal/notification/line"
	"leadflow_backend/internal/notification/mail"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Config is everything the channels read.
type Config interface {
	config.LineConfig
	config.SMTPConfig
	config.AMQPConfig
}

// Sender is the fire-and-forget delivery boundary.
type Sender interface {
	Send(ctx context.Context, kind Kind, payload Payload)
}

// Module turns domain events into notifications.
type Module struct {
	sender    Sender
	publisher *amqp.Publisher
	loc       *time.Location
	log       *logger.Logger
}

// New builds the dispatcher from configuration. Channels without
// configuration are skipped; an unreachable AMQP broker is logged and skipped
// so a broker outage never blocks startup.
func New(cfg Config, loc *time.Location, log *logger.Logger) (*Module, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	var publisher *amqp.Publisher
	if url := cfg.GetAMQPURL(); url != "" {
		publisher, err = amqp.Dial(url, cfg.GetAMQPExchange())
		if err != nil {
			log.Warn("amqp notification channel disabled", "error", err)
			publisher = nil
		}
	}

	dispatcher := NewDispatcher(renderer, log,
		LineChannel(line.NewClient(cfg, log)),
		MailChannel(mail.NewSender(cfg)),
		AMQPChannel(publisher),
	)
	log.Info("notification channels configured", "channels", dispatcher.Channels())

	m := NewWithSender(dispatcher, loc, log)
	m.publisher = publisher
	return m, nil
}

// NewWithSender wires the module to an existing sender.
func NewWithSender(sender Sender, loc *time.Location, log *logger.Logger) *Module {
	if loc == nil {
		loc = time.UTC
	}
	return &Module{sender: sender, loc: loc, log: log}
}

// Sender returns the delivery boundary.
func (m *Module) Sender() Sender { return m.sender }

// Close releases the AMQP connection, if any.
func (m *Module) Close() error {
	return m.publisher.Close()
}

// RegisterHandlers subscribes to every event that produces a notification.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), m)
	bus.Subscribe(events.LeadUpdated{}.EventName(), m)
	bus.Subscribe(events.LeadDeleted{}.EventName(), m)
	bus.Subscribe(events.IdleLeadsDetected{}.EventName(), m)
	bus.Subscribe(events.FollowUpsDue{}.EventName(), m)
	bus.Subscribe(events.BirthdayReport{}.EventName(), m)
	bus.Subscribe(events.TestNotification{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle maps an event to a kind and payload. It never fails: delivery errors
// are logged by the sender.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		m.sender.Send(ctx, KindNewLead, leadPayload(e.Lead, e.ActorName))
	case events.LeadUpdated:
		p := leadPayload(e.Lead, e.ActorName)
		p["previousStatus"] = e.PreviousStatusLabel
		p["change"] = e.Change
		m.sender.Send(ctx, KindUpdateStatus, p)
	case events.LeadDeleted:
		m.sender.Send(ctx, KindDeleteLead, leadPayload(e.Lead, e.ActorName))
	case events.IdleLeadsDetected:
		kind := KindIdleLeads
		if e.Kind == events.IdleKindReassign {
			kind = KindReassignLeads
		}
		m.sender.Send(ctx, kind, idlePayload(e, m.loc))
	case events.FollowUpsDue:
		m.sender.Send(ctx, KindFollowUpReminder, followUpPayload(e, m.loc))
	case events.BirthdayReport:
		m.sender.Send(ctx, KindBirthdayReport, birthdayPayload(e, m.loc))
	case events.TestNotification:
		m.sender.Send(ctx, KindTest, Payload{"status": "OK", "requestedBy": e.RequestedBy})
	default:
		m.log.Debug("notification: unhandled event", "event", event.EventName())
	}
	return nil
}
