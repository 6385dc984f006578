// Package presence tracks which staff members are currently working.
// Liveness is derived: a member is online only while the stored flag says
// online and the last heartbeat is fresher than the staleness threshold.
package presence

import (
	"context"
	"errors"
	"time"

	"leadflow_backend/internal/staff/domain"
	"leadflow_backend/internal/staff/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"

	"github.com/google/uuid"
)

// Store is the persistence the tracker needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Staff, error)
	repository.PresenceWriter
}

// Tracker records heartbeats and explicit presence toggles.
type Tracker struct {
	store      Store
	staleAfter time.Duration
	log        *logger.Logger
	now        func() time.Time
}

// NewTracker creates a presence tracker.
func NewTracker(store Store, cfg config.PresenceConfig, log *logger.Logger) *Tracker {
	return &Tracker{
		store:      store,
		staleAfter: cfg.GetPresenceStaleAfter(),
		log:        log,
		now:        time.Now,
	}
}

// IsOnline is the liveness predicate. A nil lastActive is always offline.
func IsOnline(s domain.Staff, now time.Time, threshold time.Duration) bool {
	if s.Status != domain.StateOnline || s.LastActiveAt == nil {
		return false
	}
	return now.Sub(*s.LastActiveAt) < threshold
}

// IsOnline applies the predicate with the tracker's clock and threshold.
func (t *Tracker) IsOnline(s domain.Staff) bool {
	return IsOnline(s, t.now(), t.staleAfter)
}

// Heartbeat marks the member online as of now.
func (t *Tracker) Heartbeat(ctx context.Context, staffID uuid.UUID) error {
	if err := t.store.Touch(ctx, staffID, t.now()); err != nil {
		metrics.RecordHeartbeatFailure()
		t.log.HeartbeatFailed(staffID.String(), err)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("staff not found")
		}
		return apperr.Unavailable("heartbeat could not be recorded", err)
	}
	return nil
}

// SetPresence persists an explicit toggle. When the write fails the state
// read before the write is returned with the error so callers can revert
// their optimistic display.
func (t *Tracker) SetPresence(ctx context.Context, staffID uuid.UUID, state domain.State) (domain.State, error) {
	if !state.Valid() {
		return "", apperr.Validation("invalid presence status")
	}

	current, err := t.store.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.NotFound("staff not found")
		}
		return "", apperr.Unavailable("presence could not be read", err)
	}

	if err := t.store.SetStatus(ctx, staffID, state, t.now()); err != nil {
		t.log.DatabaseError("presence.set_status", err)
		return current.Status, apperr.Unavailable("presence could not be updated", err)
	}
	return state, nil
}
