package triggers

import (
	apphttp "leadflow_backend/internal/http"
)

// Module exposes the runner to admins.
type Module struct {
	runner  *Runner
	handler *Handler
}

func NewModule(runner *Runner) *Module {
	return &Module{runner: runner, handler: NewHandler(runner)}
}

func (m *Module) Name() string { return "triggers" }

// Runner returns the shared runner.
func (m *Module) Runner() *Runner { return m.runner }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/triggers"))
}

var _ apphttp.Module = (*Module)(nil)
