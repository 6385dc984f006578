package escalation

import (
	"context"
	"sync"
	"testing"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	staffdomain "leadflow_backend/internal/staff/domain"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeads struct {
	leads []repository.Lead
}

func (f *fakeLeads) ListIdle(_ context.Context, cutoff time.Time) ([]repository.Lead, error) {
	out := make([]repository.Lead, 0)
	for _, l := range f.leads {
		if l.Status.IsEarly() && l.CreatedAt.Before(cutoff) {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeAdvisor struct {
	pick *staffdomain.Staff
}

func (f fakeAdvisor) SuggestReassignment(context.Context, *uuid.UUID) (*staffdomain.Staff, error) {
	return f.pick, nil
}

type escalationCfg struct{}

func (escalationCfg) GetIdleNotifyAfter() time.Duration       { return 10 * time.Minute }
func (escalationCfg) GetIdleReassignAfter() time.Duration     { return 24 * time.Hour }
func (escalationCfg) GetIdleCheckInterval() time.Duration     { return 10 * time.Minute }
func (escalationCfg) GetReassignCheckInterval() time.Duration { return time.Hour }
func (escalationCfg) GetDailyReportHour() int                 { return 8 }

type captured struct {
	mu     sync.Mutex
	events []events.IdleLeadsDetected
}

func newChecker(leads []repository.Lead, advisor Advisor, now time.Time) (*Checker, *events.InMemoryBus, *captured) {
	bus := events.NewInMemoryBus(logger.Discard())
	got := &captured{}
	bus.Subscribe(events.IdleLeadsDetected{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		got.mu.Lock()
		defer got.mu.Unlock()
		got.events = append(got.events, e.(events.IdleLeadsDetected))
		return nil
	}))
	c := NewChecker(&fakeLeads{leads: leads}, advisor, bus, escalationCfg{}, logger.Discard())
	c.now = func() time.Time { return now }
	return c, bus, got
}

func lead(name string, status domain.Status, created time.Time) repository.Lead {
	return repository.Lead{ID: uuid.New(), Name: name, Status: status, CreatedAt: created}
}

func TestCheckStaleIncludesFifteenMinuteOldLead(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	old := lead("old", domain.StatusNew, now.Add(-15*time.Minute))
	fresh := lead("fresh", domain.StatusNew, now.Add(-5*time.Minute))
	worked := lead("worked", domain.StatusContacted, now.Add(-time.Hour))

	checker, bus, got := newChecker([]repository.Lead{old, fresh, worked}, fakeAdvisor{}, now)
	report, err := checker.CheckStale(context.Background())
	require.NoError(t, err)
	bus.Wait()

	require.Len(t, report.Items, 1)
	assert.Equal(t, old.ID, report.Items[0].LeadID)
	assert.True(t, report.Notified)
	require.Len(t, got.events, 1)
	assert.Equal(t, events.IdleKindStale, got.events[0].Kind)
	assert.Len(t, got.events[0].Leads, 1)
}

func TestCheckStaleExcludesLeadExactlyAtThreshold(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	exact := lead("exact", domain.StatusUncalled, now.Add(-10*time.Minute))

	checker, bus, got := newChecker([]repository.Lead{exact}, fakeAdvisor{}, now)
	report, err := checker.CheckStale(context.Background())
	require.NoError(t, err)
	bus.Wait()

	assert.Empty(t, report.Items)
	assert.False(t, report.Notified)
	assert.Empty(t, got.events, "no notification for an empty report")
}

func TestCheckReassignSuggestsOwner(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	stuck := lead("stuck", domain.StatusNew, now.Add(-25*time.Hour))
	recent := lead("recent", domain.StatusNew, now.Add(-2*time.Hour))
	pick := &staffdomain.Staff{ID: uuid.New(), FullName: "Ploy"}

	checker, bus, got := newChecker([]repository.Lead{stuck, recent}, fakeAdvisor{pick: pick}, now)
	report, err := checker.CheckReassign(context.Background())
	require.NoError(t, err)
	bus.Wait()

	require.Len(t, report.Items, 1)
	require.NotNil(t, report.Items[0].SuggestedAssignee)
	assert.Equal(t, pick.ID, *report.Items[0].SuggestedAssignee)
	require.Len(t, got.events, 1)
	assert.Equal(t, events.IdleKindReassign, got.events[0].Kind)
	assert.Equal(t, "Ploy", got.events[0].Leads[0].SuggestedAssignee)
}

func TestChecksAreRerunnable(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	old := lead("old", domain.StatusNew, now.Add(-30*time.Minute))

	checker, bus, got := newChecker([]repository.Lead{old}, fakeAdvisor{}, now)
	for i := 0; i < 2; i++ {
		_, err := checker.CheckStale(context.Background())
		require.NoError(t, err)
	}
	bus.Wait()
	assert.Len(t, got.events, 2)
}
