package activity

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (m *memoryStore) Insert(_ context.Context, e Entry) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Entry{}, m.err
	}
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memoryStore) ListByLead(_ context.Context, leadID uuid.UUID) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0)
	for _, e := range m.entries {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func TestAppendWithoutActorRecordsSystem(t *testing.T) {
	store := &memoryStore{}
	log := New(store, logger.Discard())

	entry, err := log.Append(context.Background(), uuid.New(), "สร้างลีดใหม่", nil)
	require.NoError(t, err)
	assert.Equal(t, SystemActorName, entry.ActorName)
	assert.Nil(t, entry.ActorID)
}

func TestAppendRecordsActor(t *testing.T) {
	store := &memoryStore{}
	log := New(store, logger.Discard())
	actor := &Actor{ID: uuid.New(), Name: "Somchai"}

	entry, err := log.Append(context.Background(), uuid.New(), `เปลี่ยนสถานะเป็น "ติดต่อแล้ว"`, actor)
	require.NoError(t, err)
	assert.Equal(t, "Somchai", entry.ActorName)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, actor.ID, *entry.ActorID)
}

func TestAppendRejectsEmptyDescription(t *testing.T) {
	log := New(&memoryStore{}, logger.Discard())
	_, err := log.Append(context.Background(), uuid.New(), "   ", nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestAppendStoreFailureIsUnavailable(t *testing.T) {
	log := New(&memoryStore{err: errors.New("down")}, logger.Discard())
	_, err := log.Append(context.Background(), uuid.New(), "x", nil)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestListByLeadNewestFirst(t *testing.T) {
	store := &memoryStore{}
	log := New(store, logger.Discard())
	leadID := uuid.New()

	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Minute)
		log.now = func() time.Time { return at }
		_, err := log.Append(context.Background(), leadID, text, nil)
		require.NoError(t, err)
	}
	_, err := log.Append(context.Background(), uuid.New(), "other lead", nil)
	require.NoError(t, err)

	entries, err := log.ListByLead(context.Background(), leadID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Description)
	assert.Equal(t, "first", entries[2].Description)
}
