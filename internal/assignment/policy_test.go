package assignment

import (
	"context"
	"testing"
	"time"

	"leadflow_backend/internal/staff/domain"
	staffrepo "leadflow_backend/internal/staff/repository"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStaff struct {
	members []domain.Staff
}

func (f *fakeStaff) GetByID(_ context.Context, id uuid.UUID) (domain.Staff, error) {
	for _, m := range f.members {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Staff{}, staffrepo.ErrNotFound
}

func (f *fakeStaff) ListByRole(_ context.Context, role domain.Role) ([]domain.Staff, error) {
	out := make([]domain.Staff, 0)
	for _, m := range f.members {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeWorkload map[uuid.UUID]int

func (f fakeWorkload) OpenLeadCounts(context.Context) (map[uuid.UUID]int, error) {
	return f, nil
}

// onlineSet marks members online by ID, independent of the clock.
type onlineSet map[uuid.UUID]bool

func (o onlineSet) IsOnline(s domain.Staff) bool { return o[s.ID] }

func member(name string, role domain.Role) domain.Staff {
	now := time.Now()
	return domain.Staff{ID: uuid.New(), FullName: name, Role: role, Status: domain.StateOnline, LastActiveAt: &now}
}

func TestValidateAssignmentExplicitOfflineAssigneeAllowed(t *testing.T) {
	sales := member("Nok", domain.RoleSales)
	policy := New(&fakeStaff{members: []domain.Staff{sales}}, fakeWorkload{}, onlineSet{})

	decision, err := policy.ValidateAssignment(context.Background(), domain.Actor{Role: domain.RoleSales}, Draft{AssignedTo: &sales.ID})
	require.NoError(t, err)
	require.NotNil(t, decision.AssignedTo)
	assert.Equal(t, sales.ID, *decision.AssignedTo)
	assert.False(t, decision.AutoPicked)
}

func TestValidateAssignmentUnknownAssignee(t *testing.T) {
	policy := New(&fakeStaff{}, fakeWorkload{}, onlineSet{})
	missing := uuid.New()

	_, err := policy.ValidateAssignment(context.Background(), domain.Actor{Role: domain.RoleAdmin}, Draft{AssignedTo: &missing})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestValidateAssignmentAdminWithoutOnlineSales(t *testing.T) {
	sales := member("Nok", domain.RoleSales)
	policy := New(&fakeStaff{members: []domain.Staff{sales}}, fakeWorkload{}, onlineSet{})

	_, err := policy.ValidateAssignment(context.Background(), domain.Actor{Role: domain.RoleAdmin}, Draft{})
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, map[string]string{"code": CodeNoEligibleAssignee}, appErr.Details)
}

func TestValidateAssignmentAdminPicksLeastLoaded(t *testing.T) {
	busy := member("Aom", domain.RoleSales)
	idle := member("Ploy", domain.RoleSales)
	offline := member("Bee", domain.RoleSales)
	policy := New(
		&fakeStaff{members: []domain.Staff{busy, idle, offline}},
		fakeWorkload{busy.ID: 3, idle.ID: 1},
		onlineSet{busy.ID: true, idle.ID: true},
	)

	decision, err := policy.ValidateAssignment(context.Background(), domain.Actor{Role: domain.RoleAdmin}, Draft{})
	require.NoError(t, err)
	require.NotNil(t, decision.AssignedTo)
	assert.Equal(t, idle.ID, *decision.AssignedTo)
	assert.True(t, decision.AutoPicked)
}

func TestValidateAssignmentNonAdminPoolsLead(t *testing.T) {
	policy := New(&fakeStaff{}, fakeWorkload{}, onlineSet{})

	for _, role := range []domain.Role{domain.RoleSales, domain.RoleAfterCare} {
		decision, err := policy.ValidateAssignment(context.Background(), domain.Actor{Role: role}, Draft{})
		require.NoError(t, err)
		assert.Nil(t, decision.AssignedTo, "role %s", role)
	}
}

func TestEligibleAssigneesOnlyOnline(t *testing.T) {
	on := member("A", domain.RoleSales)
	off := member("B", domain.RoleSales)
	care := member("C", domain.RoleAfterCare)
	policy := New(&fakeStaff{members: []domain.Staff{on, off, care}}, fakeWorkload{}, onlineSet{on.ID: true, care.ID: true})

	got, err := policy.EligibleAssignees(context.Background(), domain.RoleSales)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, on.ID, got[0].ID)
}

func TestSuggestReassignmentExcludesCurrent(t *testing.T) {
	current := member("A", domain.RoleSales)
	other := member("B", domain.RoleSales)
	policy := New(
		&fakeStaff{members: []domain.Staff{current, other}},
		fakeWorkload{current.ID: 0, other.ID: 5},
		onlineSet{current.ID: true, other.ID: true},
	)

	pick, err := policy.SuggestReassignment(context.Background(), &current.ID)
	require.NoError(t, err)
	require.NotNil(t, pick)
	assert.Equal(t, other.ID, pick.ID)

	alone := New(&fakeStaff{members: []domain.Staff{current}}, fakeWorkload{}, onlineSet{current.ID: true})
	pick, err = alone.SuggestReassignment(context.Background(), &current.ID)
	require.NoError(t, err)
	assert.Nil(t, pick)
}
