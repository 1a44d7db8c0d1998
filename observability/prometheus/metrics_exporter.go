package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-routine-runner/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
	TickBuckets     []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	taskDurationSeconds *prom.HistogramVec
	taskDurationTicks   *prom.HistogramVec
	taskEndedTotal      *prom.CounterVec
	taskPanicTotal      *prom.CounterVec
	tickDurationSeconds *prom.HistogramVec
	activeRunners       *prom.GaugeVec
	idleRunners         *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "routinerunner"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}
	tickBuckets := opts.TickBuckets
	if len(tickBuckets) == 0 {
		tickBuckets = prom.ExponentialBuckets(1, 2, 12)
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Routine run time in seconds, from first step to end.",
		Buckets:   buckets,
	}, []string{"scheduler"})
	ticksVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_ticks",
		Help:      "Routine run time in scheduler ticks.",
		Buckets:   tickBuckets,
	}, []string{"scheduler"})
	endedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_ended_total",
		Help:      "Total number of ended routines by reason.",
	}, []string{"scheduler", "reason"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of routine panics.",
	}, []string{"scheduler"})
	tickVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "tick_duration_seconds",
		Help:      "Scheduler tick duration in seconds.",
		Buckets:   buckets,
	}, []string{"scheduler"})
	activeVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "active_runners",
		Help:      "Runners holding a task after the last tick.",
	}, []string{"scheduler"})
	idleVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "idle_runners",
		Help:      "Pooled runners after the last tick.",
	}, []string{"scheduler"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if ticksVec, err = registerCollector(reg, ticksVec); err != nil {
		return nil, err
	}
	if endedVec, err = registerCollector(reg, endedVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if tickVec, err = registerCollector(reg, tickVec); err != nil {
		return nil, err
	}
	if activeVec, err = registerCollector(reg, activeVec); err != nil {
		return nil, err
	}
	if idleVec, err = registerCollector(reg, idleVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		taskDurationSeconds: durationVec,
		taskDurationTicks:   ticksVec,
		taskEndedTotal:      endedVec,
		taskPanicTotal:      panicVec,
		tickDurationSeconds: tickVec,
		activeRunners:       activeVec,
		idleRunners:         idleVec,
	}, nil
}

// RecordTaskDuration records routine run time in seconds and ticks.
func (m *MetricsExporter) RecordTaskDuration(schedulerName string, duration time.Duration, ticks uint64) {
	if m == nil {
		return
	}
	name := normalizeLabel(schedulerName, "unknown")
	m.taskDurationSeconds.WithLabelValues(name).Observe(duration.Seconds())
	m.taskDurationTicks.WithLabelValues(name).Observe(float64(ticks))
}

// RecordTaskEnded counts ended routines by reason.
func (m *MetricsExporter) RecordTaskEnded(schedulerName string, reason core.EndReason) {
	if m == nil {
		return
	}
	m.taskEndedTotal.WithLabelValues(normalizeLabel(schedulerName, "unknown"), reason.String()).Inc()
}

// RecordTaskPanic records routine panic events.
func (m *MetricsExporter) RecordTaskPanic(schedulerName string, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(normalizeLabel(schedulerName, "unknown")).Inc()
}

// RecordTick records tick duration and the runner gauges.
func (m *MetricsExporter) RecordTick(schedulerName string, duration time.Duration, activeRunners, idleRunners int) {
	if m == nil {
		return
	}
	name := normalizeLabel(schedulerName, "unknown")
	m.tickDurationSeconds.WithLabelValues(name).Observe(duration.Seconds())
	m.activeRunners.WithLabelValues(name).Set(float64(activeRunners))
	m.idleRunners.WithLabelValues(name).Set(float64(idleRunners))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
