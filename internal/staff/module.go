// Package staff provides the team directory and presence bounded context.
package staff

import (
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/staff/directory"
	"leadflow_backend/internal/staff/domain"
	"leadflow_backend/internal/staff/handler"
	"leadflow_backend/internal/staff/presence"
	"leadflow_backend/internal/staff/repository"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the staff bounded context module implementing http.Module.
type Module struct {
	handler   *handler.Handler
	repo      *repository.Repository
	tracker   *presence.Tracker
	keepalive *presence.Keepalive
}

// NewModule creates the staff module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg config.PresenceConfig, log *logger.Logger) (*Module, error) {
	roles := make([]string, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		roles = append(roles, string(r))
	}
	if err := val.RegisterStringSet("staffrole", roles...); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	tracker := presence.NewTracker(repo, cfg, log)
	dir := directory.New(repo, tracker)

	return &Module{
		handler:   handler.New(tracker, dir, val, log),
		repo:      repo,
		tracker:   tracker,
		keepalive: presence.NewKeepalive(tracker, cfg.GetHeartbeatInterval()),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "staff"
}

// Repository returns the staff store for other modules.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// Tracker returns the presence tracker.
func (m *Module) Tracker() *presence.Tracker {
	return m.tracker
}

// Keepalive returns the session heartbeat loop used by realtime sessions.
func (m *Module) Keepalive() *presence.Keepalive {
	return m.keepalive
}

// RegisterRoutes mounts presence and staff routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPresenceRoutes(ctx.Protected.Group("/presence"))
	m.handler.RegisterStaffRoutes(ctx.Protected.Group("/staff"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/staff"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
