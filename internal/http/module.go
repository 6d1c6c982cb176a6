// Package http wires the Gin application together from feature modules.
package http

import (
	"github.com/gin-gonic/gin"

	"roofchat_backend/platform/logger"
)

// RouterContext carries the route groups and shared infrastructure a module
// needs to register itself. The widget API is anonymous, so there is no
// authenticated group.
type RouterContext struct {
	// API is the versioned public group, /api/v1, rate limited per IP.
	API *gin.RouterGroup

	// Root is the unversioned group for health and operational endpoints.
	Root *gin.RouterGroup

	Logger *logger.Logger
}

// Module is a self-contained feature slice that can mount its routes.
type Module interface {
	Name() string
	RegisterRoutes(rc RouterContext)
}
