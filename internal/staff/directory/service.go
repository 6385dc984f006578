// Package directory serves the staff list with derived presence and the
// admin profile edits.
package directory

import (
	"context"
	"errors"
	"strings"

	"leadflow_backend/internal/staff/domain"
	"leadflow_backend/internal/staff/repository"
	"leadflow_backend/internal/staff/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository is the staff store the directory needs.
type Repository interface {
	repository.Reader
	Create(ctx context.Context, params repository.CreateParams) (domain.Staff, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (domain.Staff, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OnlineChecker derives liveness from a stored record.
type OnlineChecker interface {
	IsOnline(s domain.Staff) bool
}

type Service struct {
	repo     Repository
	presence OnlineChecker
}

func New(repo Repository, presence OnlineChecker) *Service {
	return &Service{repo: repo, presence: presence}
}

func (s *Service) List(ctx context.Context) ([]transport.StaffResponse, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.StaffResponse, 0, len(members))
	for _, m := range members {
		out = append(out, s.toResponse(m))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.StaffResponse, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.StaffResponse{}, apperr.NotFound("staff not found")
		}
		return transport.StaffResponse{}, err
	}
	return s.toResponse(member), nil
}

// Create adds a profile for a member whose login is provisioned elsewhere.
func (s *Service) Create(ctx context.Context, req transport.CreateStaffRequest) (transport.StaffResponse, error) {
	name := sanitize.Line(req.FullName)
	if name == "" {
		return transport.StaffResponse{}, apperr.Validation("full name is required")
	}
	role := domain.Role(req.Role)
	if !role.Valid() {
		return transport.StaffResponse{}, apperr.Validation("invalid role")
	}

	member, err := s.repo.Create(ctx, repository.CreateParams{
		FullName:  name,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Role:      role,
		AvatarURL: strings.TrimSpace(req.AvatarURL),
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return transport.StaffResponse{}, apperr.Conflict("email already in use")
		}
		return transport.StaffResponse{}, err
	}
	return s.toResponse(member), nil
}

// Delete removes a member. Admins cannot remove themselves.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return apperr.Validation("you cannot remove your own profile")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("staff not found")
		}
		return err
	}
	return nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateStaffRequest) (transport.StaffResponse, error) {
	params := repository.UpdateParams{AvatarURL: req.AvatarURL}
	if req.FullName != nil {
		name := sanitize.Line(*req.FullName)
		if name == "" {
			return transport.StaffResponse{}, apperr.Validation("full name is required")
		}
		params.FullName = &name
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		if !role.Valid() {
			return transport.StaffResponse{}, apperr.Validation("invalid role")
		}
		params.Role = &role
	}

	member, err := s.repo.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.StaffResponse{}, apperr.NotFound("staff not found")
		}
		return transport.StaffResponse{}, err
	}
	return s.toResponse(member), nil
}

func (s *Service) toResponse(m domain.Staff) transport.StaffResponse {
	return transport.StaffResponse{
		ID:           m.ID,
		FullName:     m.FullName,
		Email:        m.Email,
		Role:         string(m.Role),
		AvatarURL:    m.AvatarURL,
		Status:       string(m.Status),
		Online:       s.presence.IsOnline(m),
		LastActiveAt: m.LastActiveAt,
	}
}
