package directory

import (
	"context"
	"testing"

	"leadflow_backend/internal/staff/domain"
	"leadflow_backend/internal/staff/repository"
	"leadflow_backend/internal/staff/transport"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

type memoryRepo struct {
	members map[uuid.UUID]domain.Staff
	updated *repository.UpdateParams
}

func (m *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Staff, error) {
	s, ok := m.members[id]
	if !ok {
		return domain.Staff{}, repository.ErrNotFound
	}
	return s, nil
}

func (m *memoryRepo) List(_ context.Context) ([]domain.Staff, error) {
	out := make([]domain.Staff, 0, len(m.members))
	for _, s := range m.members {
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.Staff, error) {
	var out []domain.Staff
	for _, s := range m.members {
		if s.Role == role {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, params repository.CreateParams) (domain.Staff, error) {
	for _, s := range m.members {
		if s.Email == params.Email {
			return domain.Staff{}, repository.ErrEmailTaken
		}
	}
	s := domain.Staff{ID: uuid.New(), FullName: params.FullName, Email: params.Email, Role: params.Role, Status: domain.StateOffline}
	m.members[s.ID] = s
	return s, nil
}

func (m *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.members[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.members, id)
	return nil
}

func (m *memoryRepo) Update(_ context.Context, id uuid.UUID, params repository.UpdateParams) (domain.Staff, error) {
	s, ok := m.members[id]
	if !ok {
		return domain.Staff{}, repository.ErrNotFound
	}
	m.updated = &params
	if params.FullName != nil {
		s.FullName = *params.FullName
	}
	if params.Role != nil {
		s.Role = *params.Role
	}
	m.members[id] = s
	return s, nil
}

type onlineSet map[uuid.UUID]bool

func (o onlineSet) IsOnline(s domain.Staff) bool { return o[s.ID] }

func strPtr(s string) *string { return &s }

func TestGetDerivesOnline(t *testing.T) {
	id := uuid.New()
	repo := &memoryRepo{members: map[uuid.UUID]domain.Staff{
		id: {ID: id, FullName: "Ploy", Role: domain.RoleSales, Status: domain.StateOnline},
	}}
	svc := New(repo, onlineSet{id: true})

	got, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Online || got.Role != "sales" {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	svc := New(&memoryRepo{members: map[uuid.UUID]domain.Staff{}}, onlineSet{})

	_, err := svc.Get(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateSanitisesName(t *testing.T) {
	id := uuid.New()
	repo := &memoryRepo{members: map[uuid.UUID]domain.Staff{
		id: {ID: id, FullName: "Ploy", Role: domain.RoleSales},
	}}
	svc := New(repo, onlineSet{})

	got, err := svc.Update(context.Background(), id, transport.UpdateStaffRequest{
		FullName: strPtr("  <b>Ploy</b>   S. "),
		Role:     strPtr("after_care"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FullName != "Ploy S." || got.Role != "after_care" {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestUpdateRejectsBlankName(t *testing.T) {
	id := uuid.New()
	repo := &memoryRepo{members: map[uuid.UUID]domain.Staff{id: {ID: id}}}
	svc := New(repo, onlineSet{})

	_, err := svc.Update(context.Background(), id, transport.UpdateStaffRequest{FullName: strPtr("<i></i>")})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.updated != nil {
		t.Fatalf("store must not be written on a rejected update")
	}
}

func TestCreateStoresOfflineProfile(t *testing.T) {
	repo := &memoryRepo{members: map[uuid.UUID]domain.Staff{}}
	svc := New(repo, onlineSet{})

	got, err := svc.Create(context.Background(), transport.CreateStaffRequest{
		FullName: " Nok ",
		Email:    " Nok@Example.com ",
		Role:     "sales",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FullName != "Nok" || got.Email != "nok@example.com" || got.Status != "offline" || got.Online {
		t.Fatalf("unexpected response: %+v", got)
	}
	if len(repo.members) != 1 {
		t.Fatalf("expected one stored member, got %d", len(repo.members))
	}
}

func TestCreateDuplicateEmailIsConflict(t *testing.T) {
	id := uuid.New()
	repo := &memoryRepo{members: map[uuid.UUID]domain.Staff{id: {ID: id, Email: "nok@example.com"}}}
	svc := New(repo, onlineSet{})

	_, err := svc.Create(context.Background(), transport.CreateStaffRequest{FullName: "Nok", Email: "nok@example.com", Role: "sales"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc := New(&memoryRepo{members: map[uuid.UUID]domain.Staff{}}, onlineSet{})

	_, err := svc.Create(context.Background(), transport.CreateStaffRequest{FullName: "Nok", Email: "nok@example.com", Role: "manager"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRemovesMember(t *testing.T) {
	admin, member := uuid.New(), uuid.New()
	repo := &memoryRepo{members: map[uuid.UUID]domain.Staff{
		admin:  {ID: admin, Role: domain.RoleAdmin},
		member: {ID: member, Role: domain.RoleSales},
	}}
	svc := New(repo, onlineSet{})

	if err := svc.Delete(context.Background(), admin, member); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.members[member]; ok {
		t.Fatalf("member should be gone")
	}
	if err := svc.Delete(context.Background(), admin, member); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeleteSelfIsRejected(t *testing.T) {
	admin := uuid.New()
	repo := &memoryRepo{members: map[uuid.UUID]domain.Staff{admin: {ID: admin, Role: domain.RoleAdmin}}}
	svc := New(repo, onlineSet{})

	if err := svc.Delete(context.Background(), admin, admin); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.members) != 1 {
		t.Fatalf("self-delete must not touch the store")
	}
}
