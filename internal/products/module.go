// Package products provides the product aggregation and price update module.
package products

import (
	"pricing_gateway/internal/events"
	apphttp "pricing_gateway/internal/http"
	"pricing_gateway/internal/pricing/repository"
	"pricing_gateway/internal/pricing/validation"
	"pricing_gateway/internal/products/handler"
	"pricing_gateway/internal/products/service"
	"pricing_gateway/platform/config"
	"pricing_gateway/platform/logger"
	"pricing_gateway/platform/metrics"
)

// Module is the products bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the products module with all its dependencies.
func NewModule(
	catalog service.CatalogReader,
	prices repository.Repository,
	val *validation.Validator,
	eventBus events.Publisher,
	auth config.PricingAuthConfig,
	rec metrics.Recorder,
	log *logger.Logger,
) *Module {
	if auth.GetPricingAPIKey() == "" {
		log.Warn("PRICING_API_KEY not configured; price updates are open to any caller")
	}
	svc := service.New(catalog, prices, val, eventBus, auth, rec, log)
	return &Module{handler: handler.New(svc, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "products"
}

// RegisterRoutes mounts product routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Root.Group("/products"), ctx.WriteGuards...)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
