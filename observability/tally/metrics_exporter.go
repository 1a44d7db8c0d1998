package tally

import (
	"sync"
	"time"

	"github.com/Swind/go-routine-runner/core"
	"github.com/uber-go/tally/v4"
)

var tickBuckets = tally.MustMakeExponentialValueBuckets(1, 2, 12)

// MetricsExporter adapts core.Metrics to a tally.Scope. Every metric is
// tagged with the scheduler name; end reasons add a "reason" tag.
type MetricsExporter struct {
	root tally.Scope

	mu     sync.Mutex
	scopes map[string]tally.Scope
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter reports into scope. A nil scope means tally.NoopScope.
func NewMetricsExporter(scope tally.Scope) *MetricsExporter {
	if scope == nil {
		scope = tally.NoopScope
	}
	return &MetricsExporter{
		root:   scope,
		scopes: make(map[string]tally.Scope),
	}
}

func (m *MetricsExporter) scheduler(name string) tally.Scope {
	if name == "" {
		name = "unknown"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	scope, ok := m.scopes[name]
	if !ok {
		scope = m.root.Tagged(map[string]string{"scheduler": name})
		m.scopes[name] = scope
	}
	return scope
}

func (m *MetricsExporter) RecordTaskDuration(schedulerName string, duration time.Duration, ticks uint64) {
	if m == nil {
		return
	}
	scope := m.scheduler(schedulerName)
	scope.Timer("task_duration").Record(duration)
	scope.Histogram("task_duration_ticks", tickBuckets).RecordValue(float64(ticks))
}

func (m *MetricsExporter) RecordTaskEnded(schedulerName string, reason core.EndReason) {
	if m == nil {
		return
	}
	m.scheduler(schedulerName).Tagged(map[string]string{"reason": reason.String()}).Counter("task_ended").Inc(1)
}

func (m *MetricsExporter) RecordTaskPanic(schedulerName string, panicInfo any) {
	if m == nil {
		return
	}
	m.scheduler(schedulerName).Counter("task_panic").Inc(1)
}

func (m *MetricsExporter) RecordTick(schedulerName string, duration time.Duration, activeRunners, idleRunners int) {
	if m == nil {
		return
	}
	scope := m.scheduler(schedulerName)
	scope.Timer("tick_duration").Record(duration)
	scope.Gauge("active_runners").Update(float64(activeRunners))
	scope.Gauge("idle_runners").Update(float64(idleRunners))
}
