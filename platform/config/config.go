// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
//
// Values resolve in the order: command-line flag, environment variable,
// .env file, built-in default.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
	GetWriteRateLimit() float64
	GetWriteRateBurst() int
}

// CatalogConfig provides settings for the upstream product catalog.
type CatalogConfig interface {
	GetProductsBaseURL() string
	GetCatalogTimeout() time.Duration
}

// PriceStoreConfig provides MongoDB connection settings for price records.
type PriceStoreConfig interface {
	GetMongoURL() string
	GetMongoDatabase() string
	GetMongoCollection() string
	GetMongoConnectTimeout() time.Duration
}

// PricingAuthConfig provides the shared secret guarding price updates.
type PricingAuthConfig interface {
	GetPricingAPIKey() string
}

// AMQPConfig provides settings for publishing price change notifications.
type AMQPConfig interface {
	GetAMQPURL() string
	GetAMQPExchange() string
	IsAMQPEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	ShutdownTimeout     time.Duration
	CORSOrigins         []string
	WriteRateLimit      float64
	WriteRateBurst      int
	ProductsBaseURL     string
	CatalogTimeout      time.Duration
	MongoURL            string
	MongoDatabase       string
	MongoCollection     string
	MongoConnectTimeout time.Duration
	PricingAPIKey       string
	AMQPURL             string
	AMQPExchange        string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string        { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string   { return c.CORSOrigins }
func (c *Config) GetWriteRateLimit() float64 { return c.WriteRateLimit }
func (c *Config) GetWriteRateBurst() int     { return c.WriteRateBurst }

// CatalogConfig implementation
func (c *Config) GetProductsBaseURL() string       { return c.ProductsBaseURL }
func (c *Config) GetCatalogTimeout() time.Duration { return c.CatalogTimeout }

// PriceStoreConfig implementation
func (c *Config) GetMongoURL() string                   { return c.MongoURL }
func (c *Config) GetMongoDatabase() string              { return c.MongoDatabase }
func (c *Config) GetMongoCollection() string            { return c.MongoCollection }
func (c *Config) GetMongoConnectTimeout() time.Duration { return c.MongoConnectTimeout }

// PricingAuthConfig implementation
func (c *Config) GetPricingAPIKey() string { return c.PricingAPIKey }

// AMQPConfig implementation
func (c *Config) GetAMQPURL() string      { return c.AMQPURL }
func (c *Config) GetAMQPExchange() string { return c.AMQPExchange }
func (c *Config) IsAMQPEnabled() bool     { return c.AMQPURL != "" }

// =============================================================================
// Loading
// =============================================================================

const (
	flagEnv             = "env"
	flagPort            = "port"
	flagShutdownTimeout = "shutdown-timeout"
	flagCORSOrigins     = "cors-origins"
	flagWriteRateLimit  = "write-rate-limit"
	flagWriteRateBurst  = "write-rate-burst"
	flagProductsBaseURL = "products-base-url"
	flagCatalogTimeout  = "catalog-timeout"
	flagMongoURL        = "mongodb-url"
	flagMongoDatabase   = "mongodb-database"
	flagMongoCollection = "mongodb-collection"
	flagMongoTimeout    = "mongodb-connect-timeout"
	flagPricingAPIKey   = "pricing-api-key"
	flagAMQPURL         = "amqp-url"
	flagAMQPExchange    = "amqp-exchange"
)

// LoadDotEnv populates the process environment from a .env file without
// overriding variables that are already set. It must run before flags are
// parsed so that the file sits below real environment variables.
func LoadDotEnv(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

// Flags returns the command-line flags understood by the service. Each flag
// falls back to its environment variable.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagEnv, EnvVars: []string{"APP_ENV"}, Value: "development", Usage: "runtime environment (development enables text logs)"},
		&cli.IntFlag{Name: flagPort, EnvVars: []string{"PORT"}, Value: 9090, Usage: "port the HTTP server listens on"},
		&cli.DurationFlag{Name: flagShutdownTimeout, EnvVars: []string{"SHUTDOWN_TIMEOUT"}, Value: 10 * time.Second, Usage: "grace period for in-flight requests and store close"},
		&cli.StringFlag{Name: flagCORSOrigins, EnvVars: []string{"CORS_ORIGINS"}, Value: "", Usage: "comma separated list of allowed CORS origins"},
		&cli.Float64Flag{Name: flagWriteRateLimit, EnvVars: []string{"WRITE_RATE_LIMIT"}, Value: 0, Usage: "price updates per second per client IP (0 disables)"},
		&cli.IntFlag{Name: flagWriteRateBurst, EnvVars: []string{"WRITE_RATE_BURST"}, Value: 10, Usage: "burst size for the price update rate limiter"},
		&cli.StringFlag{Name: flagProductsBaseURL, EnvVars: []string{"PRODUCTS_BASE_URL"}, Usage: "base URL of the product catalog service, e.g. https://apis.myretail.io/v1"},
		&cli.DurationFlag{Name: flagCatalogTimeout, EnvVars: []string{"CATALOG_TIMEOUT"}, Value: 10 * time.Second, Usage: "timeout for a single catalog request"},
		&cli.StringFlag{Name: flagMongoURL, EnvVars: []string{"MONGODB_URL"}, Usage: "MongoDB connection string holding pricing data"},
		&cli.StringFlag{Name: flagMongoDatabase, EnvVars: []string{"MONGODB_DATABASE"}, Value: "mr-products", Usage: "database holding the prices collection"},
		&cli.StringFlag{Name: flagMongoCollection, EnvVars: []string{"MONGODB_COLLECTION"}, Value: "prices", Usage: "collection holding price records"},
		&cli.DurationFlag{Name: flagMongoTimeout, EnvVars: []string{"MONGODB_CONNECT_TIMEOUT"}, Value: 10 * time.Second, Usage: "connect and server selection timeout"},
		&cli.StringFlag{Name: flagPricingAPIKey, EnvVars: []string{"PRICING_API_KEY"}, Usage: "shared secret required in x-api-key for price updates (empty allows open writes)"},
		&cli.StringFlag{Name: flagAMQPURL, EnvVars: []string{"AMQP_URL"}, Usage: "RabbitMQ URL for price change notifications (empty disables)"},
		&cli.StringFlag{Name: flagAMQPExchange, EnvVars: []string{"AMQP_EXCHANGE"}, Value: "prices", Usage: "fanout exchange receiving price change notifications"},
	}
}

// FromContext builds and validates a Config from parsed flags.
func FromContext(c *cli.Context) (*Config, error) {
	cfg := &Config{
		Env:                 c.String(flagEnv),
		HTTPAddr:            fmt.Sprintf(":%d", c.Int(flagPort)),
		ShutdownTimeout:     c.Duration(flagShutdownTimeout),
		CORSOrigins:         splitCSV(c.String(flagCORSOrigins)),
		WriteRateLimit:      c.Float64(flagWriteRateLimit),
		WriteRateBurst:      c.Int(flagWriteRateBurst),
		ProductsBaseURL:     strings.TrimRight(strings.TrimSpace(c.String(flagProductsBaseURL)), "/"),
		CatalogTimeout:      c.Duration(flagCatalogTimeout),
		MongoURL:            strings.TrimSpace(c.String(flagMongoURL)),
		MongoDatabase:       c.String(flagMongoDatabase),
		MongoCollection:     c.String(flagMongoCollection),
		MongoConnectTimeout: c.Duration(flagMongoTimeout),
		PricingAPIKey:       c.String(flagPricingAPIKey),
		AMQPURL:             strings.TrimSpace(c.String(flagAMQPURL)),
		AMQPExchange:        c.String(flagAMQPExchange),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ProductsBaseURL == "" {
		return fmt.Errorf("PRODUCTS_BASE_URL is required")
	}
	if u, err := url.Parse(c.ProductsBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("PRODUCTS_BASE_URL must be an absolute URL, got %q", c.ProductsBaseURL)
	}
	if c.MongoURL == "" {
		return fmt.Errorf("MONGODB_URL is required")
	}
	if c.MongoDatabase == "" || c.MongoCollection == "" {
		return fmt.Errorf("MONGODB_DATABASE and MONGODB_COLLECTION cannot be empty")
	}
	if c.WriteRateLimit < 0 {
		return fmt.Errorf("WRITE_RATE_LIMIT cannot be negative")
	}
	if c.WriteRateLimit > 0 && c.WriteRateBurst < 1 {
		return fmt.Errorf("WRITE_RATE_BURST must be at least 1 when WRITE_RATE_LIMIT is set")
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
