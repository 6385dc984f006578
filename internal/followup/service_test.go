package followup

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadflow_backend/internal/events"
	leadsrepo "leadflow_backend/internal/leads/repository"
	staffdomain "leadflow_backend/internal/staff/domain"
	staffrepo "leadflow_backend/internal/staff/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore mimics the unique batch key so retries insert nothing.
type memoryStore struct {
	mu    sync.Mutex
	items []Appointment
	names map[uuid.UUID]string
}

func key(a Appointment) string {
	return a.LeadID.String() + a.StaffID.String() + a.Start.UTC().String() + a.Title
}

func (m *memoryStore) InsertBatch(_ context.Context, items []Appointment) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool, len(m.items))
	for _, a := range m.items {
		seen[key(a)] = true
	}
	inserted := 0
	for _, a := range items {
		if seen[key(a)] {
			continue
		}
		m.items = append(m.items, a)
		seen[key(a)] = true
		inserted++
	}
	return inserted, nil
}

func (m *memoryStore) ListRange(_ context.Context, staffID *uuid.UUID, from, to time.Time) ([]CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CalendarEvent, 0)
	for _, a := range m.items {
		if a.Start.Before(from) || !a.Start.Before(to) {
			continue
		}
		if staffID != nil && a.StaffID != *staffID {
			continue
		}
		out = append(out, CalendarEvent{Title: a.Title, LeadID: a.LeadID, StaffID: a.StaffID, StaffName: m.names[a.StaffID], Start: a.Start, End: a.End})
	}
	return out, nil
}

type leadLookup map[uuid.UUID]leadsrepo.Lead

func (l leadLookup) GetByID(_ context.Context, id uuid.UUID) (leadsrepo.Lead, error) {
	lead, ok := l[id]
	if !ok {
		return leadsrepo.Lead{}, leadsrepo.ErrNotFound
	}
	return lead, nil
}

type staffLookup map[uuid.UUID]staffdomain.Staff

func (l staffLookup) GetByID(_ context.Context, id uuid.UUID) (staffdomain.Staff, error) {
	member, ok := l[id]
	if !ok {
		return staffdomain.Staff{}, staffrepo.ErrNotFound
	}
	return member, nil
}

func TestScheduleDefaultsToAssigneeAndIsIdempotent(t *testing.T) {
	assignee := uuid.New()
	lead := leadsrepo.Lead{ID: uuid.New(), Name: "คุณแดง", AssignedTo: &assignee}
	store := &memoryStore{}
	svc := NewService(store, leadLookup{lead.ID: lead}, staffLookup{}, events.NewInMemoryBus(logger.Discard()), time.UTC, logger.Discard())
	admin := staffdomain.Actor{ID: uuid.New(), Role: staffdomain.RoleAdmin}
	service := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)

	first, err := svc.Schedule(context.Background(), admin, lead.ID, nil, service)
	require.NoError(t, err)
	assert.Equal(t, 5, first.Inserted)
	for _, a := range first.Appointments {
		assert.Equal(t, assignee, a.StaffID)
	}

	retry, err := svc.Schedule(context.Background(), admin, lead.ID, nil, service)
	require.NoError(t, err)
	assert.Equal(t, 0, retry.Inserted, "retrying the same batch inserts nothing")
	assert.Len(t, store.items, 5)
}

func TestScheduleForbiddenForOtherSales(t *testing.T) {
	owner := uuid.New()
	lead := leadsrepo.Lead{ID: uuid.New(), Name: "x", AssignedTo: &owner}
	svc := NewService(&memoryStore{}, leadLookup{lead.ID: lead}, staffLookup{}, events.NewInMemoryBus(logger.Discard()), time.UTC, logger.Discard())

	_, err := svc.Schedule(context.Background(), staffdomain.Actor{ID: uuid.New(), Role: staffdomain.RoleSales}, lead.ID, nil, time.Now())
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestScheduleExplicitStaffMustExist(t *testing.T) {
	lead := leadsrepo.Lead{ID: uuid.New(), Name: "คุณขาว"}
	known := uuid.New()
	store := &memoryStore{}
	svc := NewService(store, leadLookup{lead.ID: lead}, staffLookup{known: {ID: known, Role: staffdomain.RoleAfterCare}}, events.NewInMemoryBus(logger.Discard()), time.UTC, logger.Discard())
	admin := staffdomain.Actor{ID: uuid.New(), Role: staffdomain.RoleAdmin}
	service := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)

	unknown := uuid.New()
	_, err := svc.Schedule(context.Background(), admin, lead.ID, &unknown, service)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, store.items, "nothing is booked for an unknown member")

	res, err := svc.Schedule(context.Background(), admin, lead.ID, &known, service)
	require.NoError(t, err)
	require.Equal(t, 5, res.Inserted)
	for _, a := range res.Appointments {
		assert.Equal(t, known, a.StaffID)
	}
}

func TestListScopesNonAdmins(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	store := &memoryStore{}
	start := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	_, _ = store.InsertBatch(context.Background(), []Appointment{
		{LeadID: uuid.New(), StaffID: a, Title: "a", Start: start, End: start.Add(time.Hour)},
		{LeadID: uuid.New(), StaffID: b, Title: "b", Start: start, End: start.Add(time.Hour)},
	})
	svc := NewService(store, leadLookup{}, staffLookup{}, events.NewInMemoryBus(logger.Discard()), time.UTC, logger.Discard())
	from, to := start.Add(-time.Hour), start.Add(time.Hour)

	own, err := svc.List(context.Background(), staffdomain.Actor{ID: a, Role: staffdomain.RoleSales}, from, to)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "a", own[0].Title)

	all, err := svc.List(context.Background(), staffdomain.Actor{ID: uuid.New(), Role: staffdomain.RoleAdmin}, from, to)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRemindDuePublishesOnlyWhenSomethingIsDue(t *testing.T) {
	staffID := uuid.New()
	store := &memoryStore{names: map[uuid.UUID]string{staffID: "Ploy"}}
	bus := events.NewInMemoryBus(logger.Discard())
	var mu sync.Mutex
	var got []events.FollowUpsDue
	bus.Subscribe(events.FollowUpsDue{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.(events.FollowUpsDue))
		return nil
	}))
	svc := NewService(store, leadLookup{}, staffLookup{}, bus, time.UTC, logger.Discard())

	lead := leadsrepo.Lead{ID: uuid.New(), Name: "คุณแดง"}
	require.NoError(t, svc.ScheduleForLead(context.Background(), lead, staffID, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)))

	empty, err := svc.RemindDue(context.Background(), time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, empty.Notified)

	due, err := svc.RemindDue(context.Background(), time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	bus.Wait()

	assert.True(t, due.Notified)
	require.Len(t, due.Items, 1)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "ติดตามผล 1 วัน - คุณแดง", got[0].Items[0].Title)
	assert.Equal(t, "Ploy", got[0].Items[0].StaffName)
}
