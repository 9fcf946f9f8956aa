// Package batch runs peak detection over many records with a bounded
// worker pool. A failing record never aborts the batch.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-peak/internal/logging"
	"github.com/cwbudde/algo-peak/internal/records"
	"github.com/cwbudde/algo-peak/measure/peak"
)

// ErrPanic wraps a panic recovered while processing one record.
var ErrPanic = errors.New("batch: detection panicked")

// DetectFunc is the per-record detection step.
type DetectFunc func(tr peak.Trace, expectedRT float64, p peak.Params) (peak.Result, error)

// Outcome is the result of one record.
type Outcome struct {
	Record   records.Record
	Result   peak.Result
	Err      error
	Duration time.Duration
}

// Report summarizes a batch run. Outcomes keep the input order.
type Report struct {
	RunID     uuid.UUID
	Params    peak.Params
	Started   time.Time
	Finished  time.Time
	Outcomes  []Outcome
	Succeeded int
	Failed    int
	Fallbacks int
}

// Runner processes record batches.
type Runner struct {
	params  peak.Params
	workers int
	logger  *zap.Logger
	metrics *Metrics
	detect  DetectFunc
	// Hook, when set, is called for each finished outcome from the worker
	// goroutine that produced it.
	hook func(Outcome)
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds the number of concurrent detections. Values < 1 are
// ignored.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n >= 1 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logging.OrNop(l)
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithDetectFunc replaces the detection step.
func WithDetectFunc(fn DetectFunc) Option {
	return func(r *Runner) {
		if fn != nil {
			r.detect = fn
		}
	}
}

// WithOutcomeHook registers fn to observe each finished outcome. fn may be
// called concurrently.
func WithOutcomeHook(fn func(Outcome)) Option {
	return func(r *Runner) {
		r.hook = fn
	}
}

// NewRunner returns a runner using params for every record.
func NewRunner(params peak.Params, opts ...Option) *Runner {
	r := &Runner{
		params:  params,
		workers: 1,
		logger:  zap.NewNop(),
		detect:  peak.Detect,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run detects peaks in all records. Parameter validation failures abort
// before any record is processed. Cancellation of ctx stops scheduling;
// unstarted records get the context error and Run returns it along with
// the partial report.
func (r *Runner) Run(ctx context.Context, recs []records.Record) (*Report, error) {
	if err := r.params.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:    uuid.New(),
		Params:   r.params,
		Started:  time.Now(),
		Outcomes: make([]Outcome, len(recs)),
	}
	log := r.logger.With(zap.String("run_id", report.RunID.String()))
	log.Info("batch started", zap.Int("records", len(recs)), zap.Int("workers", r.workers))

	for i, rec := range recs {
		report.Outcomes[i].Record = rec
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range recs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return nil
			}
			report.Outcomes[i] = r.process(log, recs[i])
			if r.hook != nil {
				r.hook(report.Outcomes[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	runErr := ctx.Err()
	for i := range report.Outcomes {
		o := &report.Outcomes[i]
		if o.Err == nil && o.Duration == 0 && runErr != nil {
			o.Err = runErr
			if r.metrics != nil {
				r.metrics.Observe(*o)
			}
		}
		if o.Err != nil {
			report.Failed++
			continue
		}
		report.Succeeded++
		if o.Result.Apex.Fallback {
			report.Fallbacks++
		}
	}
	report.Finished = time.Now()

	log.Info("batch finished",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("fallbacks", report.Fallbacks),
		zap.Duration("elapsed", report.Finished.Sub(report.Started)),
	)
	if runErr != nil {
		return report, fmt.Errorf("batch interrupted: %w", runErr)
	}
	return report, nil
}

func (r *Runner) process(log *zap.Logger, rec records.Record) (out Outcome) {
	out.Record = rec
	start := time.Now()
	fields := []zap.Field{
		zap.Int("row", rec.Row),
		zap.String("file", rec.FileName),
		zap.String("molecule", rec.Molecule),
	}

	defer func() {
		if v := recover(); v != nil {
			out.Err = fmt.Errorf("%w: %v", ErrPanic, v)
		}
		out.Duration = time.Since(start)
		if out.Duration <= 0 {
			out.Duration = time.Nanosecond
		}
		if r.metrics != nil {
			r.metrics.Observe(out)
		}
		if out.Err != nil {
			log.Warn("record skipped", append(fields, zap.Error(out.Err))...)
		}
	}()

	tr, err := rec.Trace()
	if err != nil {
		out.Err = err
		return out
	}

	res, err := r.detect(tr, rec.ExpectedRT, r.params)
	if err != nil {
		out.Err = err
		return out
	}
	out.Result = res

	if res.Apex.Fallback {
		log.Warn("no samples in search window, searched whole trace",
			append(fields, zap.Float64("expected_rt", rec.ExpectedRT), zap.Float64("apex_time", res.Apex.Time))...)
	}
	log.Debug("peak detected", append(fields,
		zap.Float64("apex_time", res.Apex.Time),
		zap.Float64("start", res.Boundary.LeftTime),
		zap.Float64("end", res.Boundary.RightTime),
		zap.Float64("snr", res.SignalToNoise),
	)...)
	return out
}
