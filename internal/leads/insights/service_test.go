package insights

import (
	"context"
	"testing"
	"time"

	"leadflow_backend/internal/leads/repository"
	staffdomain "leadflow_backend/internal/staff/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	scopes []*uuid.UUID
	counts repository.FunnelCounts
	rows   []repository.PerformanceRow
}

func (f *fakeRepo) Funnel(_ context.Context, assignedTo *uuid.UUID, _ repository.DateRange, _ time.Time) (repository.FunnelCounts, error) {
	f.scopes = append(f.scopes, assignedTo)
	return f.counts, nil
}

func (f *fakeRepo) TeamSize(context.Context) (int, error) { return 4, nil }

func (f *fakeRepo) TeamPerformance(context.Context) ([]repository.PerformanceRow, error) {
	return f.rows, nil
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 0, ConversionRate(0, 0))
	assert.Equal(t, 33, ConversionRate(1, 3))
	assert.Equal(t, 67, ConversionRate(2, 3))
	assert.Equal(t, 100, ConversionRate(5, 5))
}

func TestDashboardAdminSeesTeamNumbers(t *testing.T) {
	repo := &fakeRepo{counts: repository.FunnelCounts{Total: 10, Won: 4, NewOnDay: 2, Uncalled: 3, WonValue: 42000}}
	svc := New(repo, time.UTC)

	resp, err := svc.Dashboard(context.Background(), staffdomain.Actor{ID: uuid.New(), Role: staffdomain.RoleAdmin}, repository.DateRange{})
	require.NoError(t, err)
	require.NotNil(t, resp.NewLeadsToday)
	require.NotNil(t, resp.TeamSize)
	assert.Nil(t, resp.UncalledLeads)
	assert.Equal(t, 2, *resp.NewLeadsToday)
	assert.Equal(t, 4, *resp.TeamSize)
	assert.Equal(t, 40, resp.ConversionRate)
	assert.Nil(t, repo.scopes[0], "admin dashboard is unscoped")
}

func TestDashboardSalesIsScopedToSelf(t *testing.T) {
	repo := &fakeRepo{counts: repository.FunnelCounts{Total: 4, Won: 1, Uncalled: 2}}
	svc := New(repo, time.UTC)
	actor := staffdomain.Actor{ID: uuid.New(), Role: staffdomain.RoleSales}

	resp, err := svc.Dashboard(context.Background(), actor, repository.DateRange{})
	require.NoError(t, err)
	require.NotNil(t, resp.UncalledLeads)
	assert.Equal(t, 2, *resp.UncalledLeads)
	assert.Nil(t, resp.TeamSize)
	require.NotNil(t, repo.scopes[0])
	assert.Equal(t, actor.ID, *repo.scopes[0])
}

func TestTeamPerformanceKeepsStoreOrder(t *testing.T) {
	repo := &fakeRepo{rows: []repository.PerformanceRow{
		{Name: "Ploy", Total: 4, Won: 2, WonValue: 90000},
		{Name: "Nok", Total: 3, Won: 0, WonValue: 0},
	}}
	svc := New(repo, time.UTC)

	out, err := svc.TeamPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Ploy", out[0].Name)
	assert.Equal(t, 50, out[0].ConversionRate)
	assert.Equal(t, 0, out[1].ConversionRate)
}
