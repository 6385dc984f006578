package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Heartbeater is implemented by Tracker.
type Heartbeater interface {
	Heartbeat(ctx context.Context, staffID uuid.UUID) error
}

// Keepalive sends heartbeats for the lifetime of a session.
type Keepalive struct {
	beats    Heartbeater
	interval time.Duration
}

func NewKeepalive(beats Heartbeater, interval time.Duration) *Keepalive {
	return &Keepalive{beats: beats, interval: interval}
}

// Run heartbeats once immediately and then on every tick until ctx is done.
// Failures are already logged by the tracker; the next tick retries.
func (k *Keepalive) Run(ctx context.Context, staffID uuid.UUID) {
	_ = k.beats.Heartbeat(ctx, staffID)

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = k.beats.Heartbeat(ctx, staffID)
		}
	}
}
