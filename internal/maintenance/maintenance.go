// Package maintenance runs periodic background tasks as Go tickers. The only
// task today removes expired wizard sessions from stores that do not expire
// them on their own.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/albapepper/scoracle-fans/internal/session"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	SweepInterval time.Duration // Expired session removal
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		SweepInterval: 15 * time.Minute,
	}
}

// SweepObserver is told how many sessions each sweep removed.
type SweepObserver interface {
	ObserveSweep(n int64)
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, sweeper session.Sweeper, obs SweepObserver, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started", "sweep", cfg.SweepInterval)

	if cfg.SweepInterval > 0 {
		t := time.NewTicker(cfg.SweepInterval)
		defer t.Stop()
		go runLoop(ctx, t.C, func() {
			n, err := Sweep(ctx, sweeper, logger)
			if err == nil && obs != nil {
				obs.ObserveSweep(n)
			}
		})
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// Sweep removes expired sessions once and logs the outcome.
func Sweep(ctx context.Context, sweeper session.Sweeper, logger *slog.Logger) (int64, error) {
	start := time.Now()
	n, err := sweeper.Sweep(ctx)
	dur := time.Since(start).Round(time.Millisecond)
	if err != nil {
		logger.Warn("Sweep: failed to remove expired sessions", "duration", dur, "error", err)
		return 0, fmt.Errorf("sweep: %w", err)
	}
	if n > 0 {
		logger.Info("Sweep: removed expired sessions", "count", n, "duration", dur)
	}
	return n, nil
}
