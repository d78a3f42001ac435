package main

import (
	"context"
	"time"

	"pricing_gateway/platform/logger"
)

type httpServer interface {
	Shutdown(ctx context.Context) error
}

type eventDrainer interface {
	Wait(ctx context.Context) error
}

type storeCloser interface {
	Close(ctx context.Context) error
}

// shutdown stops accepting HTTP traffic, drains pending event handlers, then
// closes the price store, in that order. All steps share one timeout and
// failures are only logged.
func shutdown(srv httpServer, bus eventDrainer, store storeCloser, timeout time.Duration, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}
	if err := bus.Wait(ctx); err != nil {
		log.Warn("event handlers still running at shutdown", "error", err)
	}
	if err := store.Close(ctx); err != nil {
		log.Error("price store close failed", "error", err)
	}
	log.Info("shutdown complete")
}
