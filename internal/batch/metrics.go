package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/algo-peak/measure/peak"
)

const namespace = "completepeaker"

// Record status labels.
const (
	StatusOK           = "ok"
	StatusInvalidInput = "invalid_input"
	StatusNoPeak       = "no_peak"
	StatusCanceled     = "canceled"
	StatusError        = "error"
)

// Metrics collects per-record counters on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	records   *prometheus.CounterVec
	fallbacks prometheus.Counter
	duration  prometheus.Histogram
}

// NewMetrics registers the batch collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Processed records by outcome.",
		}, []string{"status"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apex_fallback_total",
			Help:      "Records whose search window held no samples.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detect_duration_seconds",
			Help:      "Time spent detecting one peak.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}
	m.registry.MustRegister(m.records, m.fallbacks, m.duration)
	return m
}

// Registry exposes the collectors for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records one finished detection.
func (m *Metrics) Observe(o Outcome) {
	m.records.WithLabelValues(Status(o.Err)).Inc()
	if o.Err == nil && o.Result.Apex.Fallback {
		m.fallbacks.Inc()
	}
	if o.Duration > 0 {
		m.duration.Observe(o.Duration.Seconds())
	}
}

// ObserveDetection records a detection that did not come from a batch.
func (m *Metrics) ObserveDetection(res peak.Result, err error, d time.Duration) {
	m.Observe(Outcome{Result: res, Err: err, Duration: d})
}

// WriteTextfile writes the current values in the node exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s failed: %w", path, err)
	}
	return nil
}

// Status maps a detection error to its metrics label.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, peak.ErrInvalidInput):
		return StatusInvalidInput
	case errors.Is(err, peak.ErrNoPeakFound):
		return StatusNoPeak
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	default:
		return StatusError
	}
}
