package worker

import (
	"context"
	"time"

	"github.com/massaflow/practice-api/internal/automation"
	"github.com/massaflow/practice-api/pkg/logger"
	"github.com/massaflow/practice-api/pkg/messaging"
)

const cycleLockKey = "automation:cycle:lock"

// Runner drives the automation orchestrator on a fixed interval. A
// distributed lock keeps concurrent deployments from running overlapping
// cycles; when no locker is configured the runner assumes a single
// instance.
type Runner struct {
	orchestrator *automation.Orchestrator
	locker       messaging.Locker
	interval     time.Duration
	lockTTL      time.Duration
	logger       *logger.Logger
}

func NewRunner(orch *automation.Orchestrator, locker messaging.Locker, interval, lockTTL time.Duration, log *logger.Logger) *Runner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if lockTTL <= 0 {
		lockTTL = interval
	}
	return &Runner{
		orchestrator: orch,
		locker:       locker,
		interval:     interval,
		lockTTL:      lockTTL,
		logger:       log.WithComponent("worker"),
	}
}

// Start blocks until ctx is cancelled. The first cycle runs immediately.
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("automation worker started", "interval", r.interval.String())

	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("automation worker stopping")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if r.locker != nil {
		acquired, err := r.locker.Acquire(ctx, cycleLockKey, r.lockTTL)
		if err != nil {
			r.logger.Error(err, "failed to acquire cycle lock, skipping run")
			return
		}
		if !acquired {
			r.logger.Debug("cycle lock held elsewhere, skipping run")
			return
		}
		defer func() {
			if err := r.locker.Release(context.Background(), cycleLockKey); err != nil {
				r.logger.Error(err, "failed to release cycle lock")
			}
		}()
	}

	if _, err := r.orchestrator.RunCycle(ctx); err != nil {
		r.logger.Error(err, "automation cycle failed")
	}
}
