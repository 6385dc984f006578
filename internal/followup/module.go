package followup

import (
	"time"

	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module owns the calendar routes and plugs the scheduler into lead updates.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule wires the follow-up service and registers it with the lead
// management service so a won lead with a service date books its calls.
func NewModule(pool *pgxpool.Pool, leads LeadLookup, staff StaffLookup, mgmt *management.Service, eventBus events.Bus, val *validator.Validator, loc *time.Location, log *logger.Logger) *Module {
	svc := NewService(NewRepository(pool), leads, staff, eventBus, loc, log)
	if mgmt != nil {
		mgmt.SetFollowUpScheduler(svc)
	}
	return &Module{handler: NewHandler(svc, val, loc), service: svc}
}

func (m *Module) Name() string {
	return "followup"
}

// Service returns the follow-up service for triggers and scheduled jobs.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterLeadRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterCalendarRoutes(ctx.Protected.Group("/calendar"))
}

var (
	_ apphttp.Module               = (*Module)(nil)
	_ management.FollowUpScheduler = (*Service)(nil)
)
