package notification

import (
	"context"
	"time"

	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"

	"golang.org/x/sync/errgroup"
)

const sendTimeout = 15 * time.Second

// Channel delivers rendered messages to one external system.
type Channel interface {
	Name() string
	// Accepts reports whether the channel carries this kind at all.
	Accepts(kind Kind) bool
	Send(ctx context.Context, msg Message) error
}

// Dispatcher renders a notification and fans it out to every channel.
type Dispatcher struct {
	renderer *Renderer
	channels []Channel
	log      *logger.Logger
}

func NewDispatcher(renderer *Renderer, log *logger.Logger, channels ...Channel) *Dispatcher {
	active := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			active = append(active, ch)
		}
	}
	return &Dispatcher{renderer: renderer, channels: active, log: log}
}

// Channels returns the names of the configured channels.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Send renders and delivers. It never returns an error: each channel failure
// is logged and counted on its own.
func (d *Dispatcher) Send(ctx context.Context, kind Kind, payload Payload) {
	msg, err := d.renderer.Render(kind, payload)
	if err != nil {
		d.log.NotificationFailed(string(kind), "render", err)
		metrics.RecordNotification(string(kind), "render", err)
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	var g errgroup.Group
	for _, ch := range d.channels {
		if !ch.Accepts(kind) {
			continue
		}
		g.Go(func() error {
			err := ch.Send(sendCtx, msg)
			metrics.RecordNotification(string(kind), ch.Name(), err)
			if err != nil {
				d.log.NotificationFailed(string(kind), ch.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
