// AngelaMos | 2026
// job.go

package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/carterperez-dev/currency-tracker/internal/core"
	"github.com/carterperez-dev/currency-tracker/internal/model"
	"github.com/carterperez-dev/currency-tracker/internal/rate"
)

const (
	OutcomeSuccess        = "success"
	OutcomeTransportError = "transport_error"
	OutcomeFormatError    = "format_error"
	OutcomeStoreError     = "store_error"
)

type Currencies interface {
	ListCurrencies(ctx context.Context) ([]model.Currency, error)
	UpdateCurrency(ctx context.Context, charCode string, value float64) bool
}

// FeedSource downloads the provider feed, bypassing any response cache.
type FeedSource interface {
	Refresh(ctx context.Context) (*rate.Feed, error)
}

type Recorder interface {
	ObserveRefresh(outcome string, duration time.Duration, updated, skipped int)
}

type Skipped struct {
	CharCode string `json:"char_code"`
	Reason   string `json:"reason"`
}

type Result struct {
	Updated    []string  `json:"updated"`
	Skipped    []Skipped `json:"skipped"`
	FinishedAt time.Time `json:"finished_at"`
}

type Status struct {
	LastRun     *time.Time `json:"last_run"`
	LastSuccess *time.Time `json:"last_success"`
	LastOutcome string     `json:"last_outcome,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Updated     int        `json:"updated"`
	Skipped     int        `json:"skipped"`
}

type Job struct {
	currencies Currencies
	feed       FeedSource
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time

	group singleflight.Group

	mu     sync.RWMutex
	status Status
}

type Option func(*Job)

func WithRecorder(r Recorder) Option {
	return func(j *Job) {
		j.recorder = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(j *Job) {
		j.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(j *Job) {
		j.now = now
	}
}

func NewJob(currencies Currencies, feed FeedSource, opts ...Option) *Job {
	j := &Job{
		currencies: currencies,
		feed:       feed,
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(j)
	}

	j.logger = j.logger.With(slog.String("component", "ingest"))

	return j
}

// Refresh pulls the provider feed once and updates every stored currency it
// quotes. A transport or format failure aborts the batch before any write;
// per-currency problems only skip that currency. Concurrent callers share a
// single in-flight run.
func (j *Job) Refresh(ctx context.Context) (Result, error) {
	v, err, shared := j.group.Do("refresh", func() (any, error) {
		return j.run(context.WithoutCancel(ctx))
	})
	if shared {
		j.logger.DebugContext(ctx, "joined in-flight refresh")
	}
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// RefreshRates is Refresh without the per-currency breakdown.
func (j *Job) RefreshRates(ctx context.Context) error {
	_, err := j.Refresh(ctx)
	return err
}

// LastRefresh is the completion time of the last successful run.
func (j *Job) LastRefresh() *time.Time {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.status.LastSuccess == nil {
		return nil
	}
	t := *j.status.LastSuccess
	return &t
}

func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

func (j *Job) run(ctx context.Context) (Result, error) {
	start := j.now()

	ctx, span := core.StartSpan(ctx, "ingest.refresh")
	defer span.End()

	stored, err := j.currencies.ListCurrencies(ctx)
	if err != nil {
		return Result{}, j.fail(ctx, start, OutcomeStoreError, err)
	}

	feed, err := j.feed.Refresh(ctx)
	if err != nil {
		outcome := OutcomeTransportError
		if errors.Is(err, core.ErrFormat) {
			outcome = OutcomeFormatError
		}
		return Result{}, j.fail(ctx, start, outcome, err)
	}

	result := Result{
		Updated: make([]string, 0, len(stored)),
		Skipped: make([]Skipped, 0),
	}

	for _, c := range stored {
		value, err := feed.Rate(c.CharCode)
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{CharCode: c.CharCode, Reason: err.Error()})
			core.AddSpanEvent(ctx, "currency skipped", core.AttrCharCode.String(c.CharCode))
			j.logger.WarnContext(ctx, "skipping currency", "char_code", c.CharCode, "error", err)
			continue
		}

		if !j.currencies.UpdateCurrency(ctx, c.CharCode, value) {
			result.Skipped = append(result.Skipped, Skipped{CharCode: c.CharCode, Reason: "update rejected"})
			continue
		}

		result.Updated = append(result.Updated, c.CharCode)
	}

	finished := j.now()
	result.FinishedAt = finished

	span.SetAttributes(
		core.AttrUpdated.Int(len(result.Updated)),
		core.AttrSkipped.Int(len(result.Skipped)),
	)

	j.mu.Lock()
	j.status = Status{
		LastRun:     &finished,
		LastSuccess: &finished,
		LastOutcome: OutcomeSuccess,
		Updated:     len(result.Updated),
		Skipped:     len(result.Skipped),
	}
	j.mu.Unlock()

	j.observe(OutcomeSuccess, finished.Sub(start), len(result.Updated), len(result.Skipped))

	j.logger.InfoContext(ctx, "rates refreshed",
		"updated", len(result.Updated),
		"skipped", len(result.Skipped),
		"duration", finished.Sub(start),
	)

	return result, nil
}

func (j *Job) fail(ctx context.Context, start time.Time, outcome string, err error) error {
	core.SetSpanError(ctx, err)

	finished := j.now()

	j.mu.Lock()
	j.status.LastRun = &finished
	j.status.LastOutcome = outcome
	j.status.LastError = err.Error()
	j.mu.Unlock()

	j.observe(outcome, finished.Sub(start), 0, 0)

	j.logger.ErrorContext(ctx, "rate refresh failed", "outcome", outcome, "error", err)

	return err
}

func (j *Job) observe(outcome string, d time.Duration, updated, skipped int) {
	if j.recorder != nil {
		j.recorder.ObserveRefresh(outcome, d, updated, skipped)
	}
}
