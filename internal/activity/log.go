// Package activity is the append-only history of each lead. Entries are
// written once and never edited or removed; there is no update path at any
// layer.
package activity

import (
	"context"
	"strings"
	"time"

	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"

	"github.com/google/uuid"
)

// SystemActorName is recorded when no human caused the change.
const SystemActorName = "system"

// Actor identifies who caused an entry.
type Actor struct {
	ID   uuid.UUID
	Name string
}

// Entry is one immutable history line.
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"leadId"`
	Description string     `json:"description"`
	ActorID     *uuid.UUID `json:"actorId,omitempty"`
	ActorName   string     `json:"actorName"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Store persists entries. It deliberately has no update or delete.
type Store interface {
	Insert(ctx context.Context, entry Entry) (Entry, error)
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]Entry, error)
}

// Log appends and reads lead history.
type Log struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func New(store Store, log *logger.Logger) *Log {
	return &Log{store: store, log: log, now: time.Now}
}

// Append records description for the lead. A nil actor is recorded as the system.
func (l *Log) Append(ctx context.Context, leadID uuid.UUID, description string, actor *Actor) (Entry, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Entry{}, apperr.Validation("activity description is required")
	}

	entry := Entry{
		ID:          uuid.New(),
		LeadID:      leadID,
		Description: description,
		ActorName:   SystemActorName,
		CreatedAt:   l.now().UTC(),
	}
	if actor != nil {
		id := actor.ID
		entry.ActorID = &id
		if name := strings.TrimSpace(actor.Name); name != "" {
			entry.ActorName = name
		}
	}

	saved, err := l.store.Insert(ctx, entry)
	if err != nil {
		l.log.DatabaseError("activity.append", err)
		return Entry{}, apperr.Unavailable("activity could not be recorded", err)
	}
	metrics.RecordActivityEntry()
	return saved, nil
}

// ListByLead returns the lead's history, newest first.
func (l *Log) ListByLead(ctx context.Context, leadID uuid.UUID) ([]Entry, error) {
	entries, err := l.store.ListByLead(ctx, leadID)
	if err != nil {
		return nil, apperr.Unavailable("activity could not be loaded", err)
	}
	return entries, nil
}
