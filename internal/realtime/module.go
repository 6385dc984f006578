package realtime

import (
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/platform/logger"
)

// Module exposes the realtime streams.
type Module struct {
	hub     *Hub
	handler *Handler
}

func NewModule(keepalive Keepalive, allowOrigin func(string) bool, log *logger.Logger) *Module {
	hub := NewHub(log)
	return &Module{hub: hub, handler: NewHandler(hub, keepalive, allowOrigin, log)}
}

func (m *Module) Name() string { return "realtime" }

// Hub returns the session registry the change listener feeds.
func (m *Module) Hub() *Hub { return m.hub }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/realtime"))
}

var _ apphttp.Module = (*Module)(nil)
