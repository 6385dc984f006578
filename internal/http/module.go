// Package http holds the contract between the router and the bounded
// context modules.
package http

import "github.com/gin-gonic/gin"

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups a module may mount on. Both sit
// under /api/v1 behind the JWT middleware and the per-IP limiter; Admin
// additionally requires the admin role.
type RouterContext struct {
	Protected *gin.RouterGroup
	Admin     *gin.RouterGroup
}
