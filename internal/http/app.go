// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"
	"net/http"

	"pricing_gateway/platform/config"
	"pricing_gateway/platform/logger"

	"github.com/gin-gonic/gin"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Instrumentation provides request metrics middleware and the scrape endpoint.
type Instrumentation interface {
	Middleware() gin.HandlerFunc
	Handler() http.Handler
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (price store ping).
	Health HealthChecker
	// Metrics instruments requests and serves /metrics. Optional.
	Metrics Instrumentation
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
