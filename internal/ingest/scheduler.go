// AngelaMos | 2026
// scheduler.go

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/carterperez-dev/currency-tracker/internal/config"
)

type Scheduler struct {
	cron     *cron.Cron
	job      *Job
	interval time.Duration
	onStart  bool
	logger   *slog.Logger
	cancel   context.CancelFunc
}

func NewScheduler(job *Job, cfg config.IngestConfig, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "scheduler"))

	cl := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(
				cron.Recover(cl),
				cron.SkipIfStillRunning(cl),
			),
		),
		job:      job,
		interval: cfg.Interval,
		onStart:  cfg.OnStart,
		logger:   logger,
	}
}

// Start schedules a refresh every interval. Overlapping ticks are skipped
// while a run is still in progress.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval < time.Second {
		return fmt.Errorf("ingest interval %s is below one second", s.interval)
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		s.tick(ctx)
	}))
	s.cron.Start()

	s.logger.Info("rate refresh scheduled", "interval", s.interval)

	if s.onStart {
		go s.tick(ctx)
	}

	return nil
}

// Stop halts scheduling and waits for a running refresh, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}

	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, _ = s.job.Refresh(ctx) //nolint:errcheck // logged by job
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
