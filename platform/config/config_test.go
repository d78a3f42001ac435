package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v2"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var (
		cfg     *Config
		loadErr error
	)
	app := &cli.App{
		Name:  "test",
		Flags: Flags(),
		Action: func(c *cli.Context) error {
			cfg, loadErr = FromContext(c)
			return nil
		},
	}
	if err := app.Run(append([]string{"test"}, args...)); err != nil {
		t.Fatalf("run app: %v", err)
	}
	return cfg, loadErr
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t, "--products-base-url", "https://apis.example.io/v1/", "--mongodb-url", "mongodb://localhost:27017")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("expected default port 9090, got %s", cfg.HTTPAddr)
	}
	if cfg.ProductsBaseURL != "https://apis.example.io/v1" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.ProductsBaseURL)
	}
	if cfg.MongoDatabase != "mr-products" || cfg.MongoCollection != "prices" {
		t.Fatalf("unexpected store names %s/%s", cfg.MongoDatabase, cfg.MongoCollection)
	}
	if cfg.CatalogTimeout != 10*time.Second {
		t.Fatalf("expected 10s catalog timeout, got %s", cfg.CatalogTimeout)
	}
	if cfg.GetPricingAPIKey() != "" {
		t.Fatal("expected open writes by default")
	}
	if cfg.IsAMQPEnabled() {
		t.Fatal("expected AMQP disabled by default")
	}
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("PRODUCTS_BASE_URL", "https://env.example.io")
	t.Setenv("MONGODB_URL", "mongodb://env:27017")
	t.Setenv("PRICING_API_KEY", "from-env")
	t.Setenv("PORT", "8081")

	cfg, err := load(t, "--pricing-api-key", "from-flag")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PricingAPIKey != "from-flag" {
		t.Fatalf("expected flag to win, got %s", cfg.PricingAPIKey)
	}
	if cfg.HTTPAddr != ":8081" {
		t.Fatalf("expected env port, got %s", cfg.HTTPAddr)
	}
	if cfg.MongoURL != "mongodb://env:27017" {
		t.Fatalf("expected env mongo url, got %s", cfg.MongoURL)
	}
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "PRICING_TEST_FROM_FILE=file\nPRICING_TEST_SHARED=file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("PRICING_TEST_SHARED", "env")
	t.Cleanup(func() { _ = os.Unsetenv("PRICING_TEST_FROM_FILE") })

	LoadDotEnv(path)

	if got := os.Getenv("PRICING_TEST_FROM_FILE"); got != "file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("PRICING_TEST_SHARED"); got != "env" {
		t.Fatalf("expected environment to win over file, got %q", got)
	}
}

func TestRequiredSettings(t *testing.T) {
	if _, err := load(t, "--mongodb-url", "mongodb://localhost"); err == nil {
		t.Fatal("expected error without products base url")
	}
	if _, err := load(t, "--products-base-url", "https://apis.example.io"); err == nil {
		t.Fatal("expected error without mongodb url")
	}
	if _, err := load(t, "--products-base-url", "not a url", "--mongodb-url", "mongodb://localhost"); err == nil {
		t.Fatal("expected error for relative base url")
	}
}

func TestCORSOriginsSplit(t *testing.T) {
	cfg, err := load(t,
		"--products-base-url", "https://apis.example.io",
		"--mongodb-url", "mongodb://localhost",
		"--cors-origins", " https://a.example , ,https://b.example",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example" || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %#v", cfg.CORSOrigins)
	}
}
