package bookrec

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	stages     *prometheus.HistogramVec
	dropped    *prometheus.CounterVec
	sizes      *prometheus.GaugeVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookrec",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookrec",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookrec",
			Subsystem: "sdk",
			Name:      "build_stage_duration_seconds",
			Help:      "Snapshot build stage duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookrec",
			Subsystem: "sdk",
			Name:      "build_dropped_rows_total",
			Help:      "Rows discarded while building the snapshot, by reason.",
		}, []string{"reason"}),
		sizes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "bookrec",
			Subsystem: "sdk",
			Name:      "snapshot_size",
			Help:      "Sizes of the last built snapshot.",
		}, []string{"kind"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.stages); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.dropped); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.sizes); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("bookrec: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("bookrec: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations and the snapshot build.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger != nil {
		switch status {
		case "error":
			o.logger.Warn("operation failed", "op", op, "duration", dur, "error", err)
		default:
			o.logger.Debug("operation completed", "op", op, "status", status, "duration", dur)
		}
	}
}

// StageDone, Dropped and Sizes receive build measurements from the pipeline.

func (o *observer) StageDone(stage string, d time.Duration) {
	if o.metrics != nil {
		o.metrics.stages.WithLabelValues(stage).Observe(d.Seconds())
	}
}

func (o *observer) Dropped(reason string, n int) {
	if o.metrics != nil && n > 0 {
		o.metrics.dropped.WithLabelValues(reason).Add(float64(n))
	}
}

func (o *observer) Sizes(books, joined, users, titles int) {
	if o.metrics == nil {
		return
	}
	o.metrics.sizes.WithLabelValues("catalog_books").Set(float64(books))
	o.metrics.sizes.WithLabelValues("joined_ratings").Set(float64(joined))
	o.metrics.sizes.WithLabelValues("index_users").Set(float64(users))
	o.metrics.sizes.WithLabelValues("index_titles").Set(float64(titles))
}
