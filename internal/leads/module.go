// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"time"

	"leadflow_backend/internal/activity"
	"leadflow_backend/internal/assignment"
	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/insights"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/programs"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	repo       *repository.Repository
	policy     *assignment.Policy
	management *management.Service
}

// NewModule wires the lead workflow. Staff records and presence come from
// the staff module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, staff assignment.StaffReader, presence assignment.OnlineChecker, loc *time.Location, log *logger.Logger) (*Module, error) {
	allowed := make([]string, 0, len(domain.Statuses)*2)
	for _, s := range domain.Statuses {
		allowed = append(allowed, string(s), s.Label())
	}
	if err := val.RegisterStringSet("leadstatus", allowed...); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	activityLog := activity.New(activity.NewRepository(pool), log)
	policy := assignment.New(staff, repo, presence)

	mgmtSvc := management.New(repo, activityLog, policy, staff, eventBus, loc, log)
	insightsSvc := insights.New(repo, loc)
	programsSvc := programs.New(repo)

	return &Module{
		handler:    handler.New(mgmtSvc, insightsSvc, programsSvc, val, loc),
		repo:       repo,
		policy:     policy,
		management: mgmtSvc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository returns the lead store for escalation, follow-ups and reports.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// Policy returns the assignment policy, shared with idle-lead escalation.
func (m *Module) Policy() *assignment.Policy {
	return m.policy
}

// ManagementService returns the lead management service for external use.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterProgramRoutes(ctx.Protected.Group("/programs"))
	m.handler.RegisterAdminRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
