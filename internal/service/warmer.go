package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Replenisher tops up the question pool
type Replenisher interface {
	Replenish(ctx context.Context) (int, error)
}

// PoolWarmer periodically replenishes the question pool so feed requests
// hit the fast path more often
type PoolWarmer struct {
	feed    Replenisher
	cron    *cron.Cron
	timeout time.Duration
	logger  *slog.Logger
}

// NewPoolWarmer schedules replenishment on a standard five-field cron expression
func NewPoolWarmer(feed Replenisher, schedule string, timeout time.Duration, logger *slog.Logger) (*PoolWarmer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &PoolWarmer{
		feed:    feed,
		cron:    cron.New(),
		timeout: timeout,
		logger:  logger.With("job", "pool_warmer"),
	}
	if _, err := w.cron.AddFunc(schedule, func() {
		w.RunOnce(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("invalid warmer schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start begins running scheduled jobs in the background
func (w *PoolWarmer) Start() {
	w.cron.Start()
	w.logger.Info("pool warmer started")
}

// Stop prevents new runs and waits for a running job to finish
func (w *PoolWarmer) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info("pool warmer stopped")
}

// RunOnce performs a single replenishment. Failures are logged only.
func (w *PoolWarmer) RunOnce(ctx context.Context) int {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	stored, err := w.feed.Replenish(ctx)
	if err != nil {
		w.logger.Warn("pool replenishment failed", "error", err)
		return 0
	}
	if stored > 0 {
		w.logger.Info("pool replenished", "stored", stored)
	}
	return stored
}
