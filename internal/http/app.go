package http

import (
	"context"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// RouterConfig is the slice of the process config the router reads: listen
// address, CORS origins and the JWT secret that guards /api/v1.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs GET /health. The API binary passes its pgx pool.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is what cmd/api hands to the router: the staff, leads, follow-up,
// trigger and realtime modules plus the shared logger and the database
// readiness check.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}
