package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricing_gateway/internal/catalog"
	"pricing_gateway/internal/events"
	apphttp "pricing_gateway/internal/http"
	"pricing_gateway/internal/http/router"
	"pricing_gateway/internal/notification"
	"pricing_gateway/internal/notification/broker"
	"pricing_gateway/internal/pricing/repository"
	"pricing_gateway/internal/pricing/validation"
	"pricing_gateway/internal/products"
	"pricing_gateway/platform/config"
	"pricing_gateway/platform/logger"
	"pricing_gateway/platform/metrics"
	"pricing_gateway/platform/mongostore"
	"pricing_gateway/platform/validator"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const (
	startupPingTimeout = 5 * time.Second
	readHeaderTimeout  = 10 * time.Second
)

func main() {
	// .env sits below real environment variables and flags.
	config.LoadDotEnv()

	app := &cli.App{
		Name:   "pricing-gateway",
		Usage:  "serve product details merged with current prices",
		Flags:  config.Flags(),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pricing-gateway:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.FromContext(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	store := mongostore.NewManager(cfg, log)
	pingCtx, cancelPing := context.WithTimeout(ctx, startupPingTimeout)
	if err := store.Ping(pingCtx); err != nil {
		// Not fatal: the manager dials again on the next request.
		log.Warn("price store unreachable at startup", "error", err)
	} else {
		log.Info("price store connection established", "database", cfg.GetMongoDatabase(), "collection", cfg.GetMongoCollection())
	}
	cancelPing()

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	if cfg.IsAMQPEnabled() {
		publisher, err := broker.Dial(cfg, log)
		if err != nil {
			log.Warn("price change notifications disabled", "error", err)
		} else {
			defer func() { _ = publisher.Close() }()
			notification.New(publisher, log).RegisterHandlers(eventBus)
		}
	} else {
		log.Info("AMQP_URL not configured; price change notifications disabled")
	}

	appMetrics := metrics.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	priceValidator, err := validation.New(validator.New())
	if err != nil {
		return err
	}

	catalogModule := catalog.NewModule(cfg, log)
	productsModule := products.NewModule(
		catalogModule.Client(),
		repository.New(store),
		priceValidator,
		eventBus,
		cfg,
		appMetrics,
		log,
	)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	engine := router.New(&apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  store,
		Metrics: appMetrics,
		Modules: []apphttp.Module{productsModule},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdown(srv, eventBus, store, cfg.ShutdownTimeout, log)
		return nil
	})

	return g.Wait()
}
