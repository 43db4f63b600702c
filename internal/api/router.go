// Package api exposes the example service and the health reporter over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
)

// APIPrefix is the versioned mount point for resource routes.
const APIPrefix = "/api/v1"

// Deps are the collaborators the routes need. Metrics may be nil.
type Deps struct {
	Examples ExampleService
	Health   HealthReporter
	Metrics  http.Handler
	Logger   infralogger.Logger
}

// RegisterRoutes mounts every route on router. Example routes are served both
// under APIPrefix and at the root.
func RegisterRoutes(router *gin.Engine, deps Deps) {
	examples := NewExampleHandler(deps.Examples, deps.Logger)
	healthHandler := NewHealthHandler(deps.Health, deps.Logger)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, MessageResponse{Message: "Hello, World!"})
	})

	router.GET("/health", healthHandler.Health)
	router.GET("/health/simple", healthHandler.Simple)

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	registerExampleRoutes(router.Group(APIPrefix+"/examples"), examples)
	registerExampleRoutes(router.Group("/examples"), examples)
}

func registerExampleRoutes(group *gin.RouterGroup, h *ExampleHandler) {
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}
