package realtime

import (
	"context"
	"errors"
	"time"

	"leadflow_backend/platform/logger"

	"github.com/jackc/pgx/v5"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Dispatcher receives decoded changes and reconnect resyncs.
type Dispatcher interface {
	Dispatch(c Change) int
	Resync() int
}

// Listener holds a dedicated connection on LISTEN record_changes and hands
// every notification to the hub. Pool connections are not used because a
// LISTEN is bound to its session.
type Listener struct {
	dsn      string
	hub      Dispatcher
	log      *logger.Logger
	wait     func(ctx context.Context, d time.Duration) bool
	listened bool
}

func NewListener(dsn string, hub Dispatcher, log *logger.Logger) *Listener {
	return &Listener{dsn: dsn, hub: hub, log: log, wait: sleep}
}

// Run listens until ctx is cancelled, reconnecting with exponential backoff.
func (l *Listener) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn("realtime: change listener disconnected", "error", err, "retryIn", backoff.String())
		if !l.wait(ctx, backoff) {
			return nil
		}
		backoff = nextBackoff(backoff, err)
	}
}

// errReady marks a listen that got as far as LISTEN before failing; the
// backoff resets after such a run.
var errReady = errors.New("listener was ready")

func nextBackoff(current time.Duration, err error) time.Duration {
	if errors.Is(err, errReady) {
		return minBackoff
	}
	current *= 2
	if current > maxBackoff {
		return maxBackoff
	}
	return current
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return err
	}
	l.ready()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return errors.Join(errReady, err)
		}
		l.handle(n.Payload)
	}
}

// ready runs once LISTEN is in place. Every run after the first is a
// reconnect, so sessions are told to resync.
func (l *Listener) ready() {
	l.log.Info("realtime: listening for record changes", "channel", Channel)
	if l.listened {
		sent := l.hub.Resync()
		l.log.Info("realtime: change feed reconnected, sessions resynced", "sessions", sent)
	}
	l.listened = true
}

func (l *Listener) handle(payload string) {
	change, err := DecodeChange(payload)
	if err != nil {
		l.log.Warn("realtime: ignoring malformed change", "error", err)
		return
	}
	sent := l.hub.Dispatch(change)
	l.log.Debug("realtime: change dispatched", "table", change.Table, "op", change.Op, "id", change.RecordID, "sessions", sent)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
