// Package server runs the process's long-lived services and shuts them down
// together on signal or failure.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component. Run blocks until ctx is cancelled or
// the service fails.
type Service interface {
	Run(ctx context.Context) error
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context) error

// Run calls f.
func (f ServiceFunc) Run(ctx context.Context) error { return f(ctx) }

// Lifecycle manages the startup and shutdown of multiple services.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until SIGINT, SIGTERM, cancellation of
// ctx, or the first service failure. All services are then cancelled and
// awaited.
//
// Postcondition: Every service has returned. The error is the first service
// failure, or nil on a signal or cancellation.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	var wg sync.WaitGroup
	for _, ns := range services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.logger.Info("starting service", zap.String("service", ns.name))
			svcStart := time.Now()
			err := ns.service.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				cancel(fmt.Errorf("service %s: %w", ns.name, err))
				return
			}
			l.logger.Info("service stopped",
				zap.String("service", ns.name),
				zap.Duration("uptime", time.Since(svcStart)),
			)
		}()
	}
	l.logger.Info("all services started", zap.Int("count", len(services)))

	<-ctx.Done()
	l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	wg.Wait()
	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))

	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
