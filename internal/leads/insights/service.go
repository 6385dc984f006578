// Package insights computes the dashboard, team performance and conversion
// numbers from the lead store.
package insights

import (
	"context"
	"math"
	"time"

	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	staffdomain "leadflow_backend/internal/staff/domain"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

// Repository is the read model the insights need.
type Repository interface {
	Funnel(ctx context.Context, assignedTo *uuid.UUID, rng repository.DateRange, day time.Time) (repository.FunnelCounts, error)
	TeamSize(ctx context.Context) (int, error)
	TeamPerformance(ctx context.Context) ([]repository.PerformanceRow, error)
}

type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func New(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// Dashboard returns the headline numbers for the actor's role.
func (s *Service) Dashboard(ctx context.Context, actor staffdomain.Actor, rng repository.DateRange) (transport.DashboardResponse, error) {
	var scope *uuid.UUID
	if !actor.IsAdmin() {
		id := actor.ID
		scope = &id
	}

	counts, err := s.repo.Funnel(ctx, scope, rng, s.today())
	if err != nil {
		return transport.DashboardResponse{}, apperr.Unavailable("dashboard could not be loaded", err)
	}

	resp := transport.DashboardResponse{
		TotalLeads:     counts.Total,
		WonValue:       counts.WonValue,
		ConversionRate: ConversionRate(counts.Won, counts.Total),
	}
	if actor.IsAdmin() {
		teamSize, err := s.repo.TeamSize(ctx)
		if err != nil {
			return transport.DashboardResponse{}, apperr.Unavailable("dashboard could not be loaded", err)
		}
		newToday := counts.NewOnDay
		resp.NewLeadsToday = &newToday
		resp.TeamSize = &teamSize
	} else {
		uncalled := counts.Uncalled
		resp.UncalledLeads = &uncalled
	}
	return resp, nil
}

// TeamPerformance ranks sales and after-care members by won value.
func (s *Service) TeamPerformance(ctx context.Context) ([]transport.PerformanceResponse, error) {
	rows, err := s.repo.TeamPerformance(ctx)
	if err != nil {
		return nil, apperr.Unavailable("performance could not be loaded", err)
	}
	out := make([]transport.PerformanceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, transport.PerformanceResponse{
			StaffID:        r.StaffID,
			Name:           r.Name,
			Role:           r.Role,
			TotalLeads:     r.Total,
			Won:            r.Won,
			Lost:           r.Lost,
			Uncalled:       r.Uncalled,
			TotalSales:     r.WonValue,
			ConversionRate: ConversionRate(r.Won, r.Total),
		})
	}
	return out, nil
}

// Conversion splits leads into won, lost and still in progress.
func (s *Service) Conversion(ctx context.Context, staffID *uuid.UUID, rng repository.DateRange) (transport.ConversionResponse, error) {
	counts, err := s.repo.Funnel(ctx, staffID, rng, s.today())
	if err != nil {
		return transport.ConversionResponse{}, apperr.Unavailable("conversion could not be loaded", err)
	}
	return transport.ConversionResponse{Won: counts.Won, Lost: counts.Lost, InProgress: counts.InProgress}, nil
}

// ConversionRate is won/total as a rounded percentage; zero when there are no leads.
func ConversionRate(won, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(won) / float64(total) * 100))
}

func (s *Service) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}
