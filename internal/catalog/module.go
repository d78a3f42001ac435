// Package catalog provides access to the upstream product catalog service.
package catalog

import (
	"pricing_gateway/internal/catalog/client"
	"pricing_gateway/platform/config"
	"pricing_gateway/platform/logger"
)

// Module wires the catalog client. It exposes no HTTP routes of its own.
type Module struct {
	client *client.Client
}

// NewModule creates the catalog module.
func NewModule(cfg config.CatalogConfig, log *logger.Logger) *Module {
	log.Info("catalog client initialized", "baseURL", cfg.GetProductsBaseURL(), "timeout", cfg.GetCatalogTimeout())
	return &Module{client: client.New(cfg, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Client returns the catalog client for use by other modules.
func (m *Module) Client() *client.Client {
	return m.client
}
