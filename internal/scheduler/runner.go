package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clawinfra/herald/internal/types"
)

// Executor sends the notifications that job actions describe. The
// dispatcher facade satisfies it through a thin adapter in cmd.
type Executor interface {
	Dispatch(ctx context.Context, kind types.Kind, to, body string) error
	DispatchRouted(ctx context.Context, to, body string) error
	Broadcast(ctx context.Context, to, body string) error
}

// JobRunner executes a single job on schedule
type JobRunner struct {
	job      *Job
	ticker   *time.Ticker
	logger   *slog.Logger
	executor Executor
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewJobRunner creates a new job runner
func NewJobRunner(job *Job, executor Executor, log *slog.Logger) *JobRunner {
	if log == nil {
		log = slog.Default()
	}
	return &JobRunner{
		job:      job,
		executor: executor,
		logger:   log.With("job", job.ID),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins executing the job on schedule
func (r *JobRunner) Start(ctx context.Context) {
	defer close(r.doneCh)

	if !r.job.Enabled {
		r.logger.Debug("job disabled, not starting")
		return
	}

	nextRun, err := r.job.NextRun(time.Now())
	if err != nil {
		r.logger.Error("failed to calculate next run", "error", err)
		return
	}
	r.job.State.NextRunAt = nextRun

	r.logger.Info("job runner started", "next_run", nextRun.Format(time.RFC3339))

	var tickerDuration time.Duration
	switch r.job.Schedule.Kind {
	case "interval":
		tickerDuration = time.Duration(r.job.Schedule.IntervalMs) * time.Millisecond
	case "cron", "at":
		// Check every minute for cron/at schedules
		tickerDuration = 1 * time.Minute
	}

	r.ticker = time.NewTicker(tickerDuration)
	defer r.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("job runner stopped (context cancelled)")
			return
		case <-r.stopCh:
			r.logger.Info("job runner stopped")
			return
		case now := <-r.ticker.C:
			// Interval schedules fire every tick; cron/at wait for the
			// computed next run to pass.
			shouldRun := r.job.Schedule.Kind == "interval" ||
				now.After(r.job.State.NextRunAt) || now.Equal(r.job.State.NextRunAt)

			if shouldRun {
				r.executeJob(ctx)

				nextRun, err := r.job.NextRun(time.Now())
				if err != nil {
					r.logger.Error("failed to calculate next run", "error", err)
				} else {
					r.job.State.NextRunAt = nextRun
					r.logger.Debug("next run scheduled", "next_run", nextRun.Format(time.RFC3339))
				}
			}
		}
	}
}

// Stop stops the job runner
func (r *JobRunner) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// executeJob sends the job's notification once
func (r *JobRunner) executeJob(ctx context.Context) {
	start := time.Now()
	r.logger.Info("executing job", "action", r.job.Action.Kind)

	var err error
	if r.executor == nil {
		err = fmt.Errorf("executor not set")
	} else {
		switch r.job.Action.Kind {
		case ActionBroadcast:
			err = r.executor.Broadcast(ctx, r.job.Action.To, r.job.Action.Message)
		case ActionRouted:
			err = r.executor.DispatchRouted(ctx, r.job.Action.To, r.job.Action.Message)
		default:
			err = r.executor.Dispatch(ctx, types.Kind(r.job.Action.Kind), r.job.Action.To, r.job.Action.Message)
		}
	}

	duration := time.Since(start)

	r.job.State.LastRunAt = time.Now()
	r.job.State.LastDuration = duration
	r.job.State.RunCount++

	if err != nil {
		r.job.State.ErrorCount++
		r.job.State.LastError = err.Error()
		r.logger.Error("job failed",
			"error", err,
			"duration", duration,
			"run_count", r.job.State.RunCount,
			"error_count", r.job.State.ErrorCount)
	} else {
		r.job.State.LastError = ""
		r.logger.Info("job completed",
			"duration", duration,
			"run_count", r.job.State.RunCount)
	}
}
