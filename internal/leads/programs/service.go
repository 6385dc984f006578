// Package programs manages the catalogue of programs a lead can be interested in.
package programs

import (
	"context"
	"errors"

	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/sanitize"

	"github.com/google/uuid"
)

type Repository interface {
	ListPrograms(ctx context.Context) ([]repository.Program, error)
	CreateProgram(ctx context.Context, name string) (repository.Program, error)
	DeleteProgram(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]transport.ProgramResponse, error) {
	items, err := s.repo.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ProgramResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toResponse(p))
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, req transport.CreateProgramRequest) (transport.ProgramResponse, error) {
	name := sanitize.Line(req.Name)
	if name == "" {
		return transport.ProgramResponse{}, apperr.Validation("program name is required")
	}
	p, err := s.repo.CreateProgram(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateProgram) {
			return transport.ProgramResponse{}, apperr.Conflict("program already exists")
		}
		return transport.ProgramResponse{}, err
	}
	return toResponse(p), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProgram(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("program not found")
		}
		return err
	}
	return nil
}

func toResponse(p repository.Program) transport.ProgramResponse {
	return transport.ProgramResponse{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}
