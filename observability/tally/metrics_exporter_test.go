package tally

import (
	"context"
	"testing"
	"time"

	"github.com/Swind/go-routine-runner/core"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
)

func counterValue(t *testing.T, scope tally.TestScope, name string, tags map[string]string) int64 {
	t.Helper()
	for _, c := range scope.Snapshot().Counters() {
		if c.Name() != name {
			continue
		}
		match := true
		for k, v := range tags {
			if c.Tags()[k] != v {
				match = false
				break
			}
		}
		if match {
			return c.Value()
		}
	}
	return 0
}

func gaugeValue(t *testing.T, scope tally.TestScope, name, scheduler string) float64 {
	t.Helper()
	for _, g := range scope.Snapshot().Gauges() {
		if g.Name() == name && g.Tags()["scheduler"] == scheduler {
			return g.Value()
		}
	}
	t.Fatalf("gauge %s{scheduler=%s} not found", name, scheduler)
	return 0
}

func TestMetricsExporter_RecordMethods(t *testing.T) {
	scope := tally.NewTestScope("routinerunner", nil)
	exporter := NewMetricsExporter(scope)

	exporter.RecordTaskDuration("main", 20*time.Millisecond, 3)
	exporter.RecordTaskEnded("main", core.EndSkipped)
	exporter.RecordTaskEnded("main", core.EndSkipped)
	exporter.RecordTaskPanic("main", "boom")
	exporter.RecordTick("main", time.Millisecond, 4, 6)

	require.Equal(t, int64(2), counterValue(t, scope, "routinerunner.task_ended", map[string]string{"scheduler": "main", "reason": "skipped"}))
	require.Equal(t, int64(1), counterValue(t, scope, "routinerunner.task_panic", map[string]string{"scheduler": "main"}))
	require.Equal(t, 4.0, gaugeValue(t, scope, "routinerunner.active_runners", "main"))
	require.Equal(t, 6.0, gaugeValue(t, scope, "routinerunner.idle_runners", "main"))

	timers := 0
	for _, tm := range scope.Snapshot().Timers() {
		if tm.Name() == "routinerunner.task_duration" {
			require.Equal(t, []time.Duration{20 * time.Millisecond}, tm.Values())
			timers++
		}
	}
	require.Equal(t, 1, timers)
}

func TestMetricsExporter_NilScope(t *testing.T) {
	exporter := NewMetricsExporter(nil)
	exporter.RecordTaskEnded("", core.EndCompleted)
	exporter.RecordTick("", time.Millisecond, 0, 0)
}

func TestMetricsExporter_WiredIntoScheduler(t *testing.T) {
	scope := tally.NewTestScope("", nil)

	config := core.DefaultSchedulerConfig()
	config.Name = "game"
	config.Metrics = NewMetricsExporter(scope)
	config.Logger = core.NewNoOpLogger()
	config.PanicHandler = &core.DefaultPanicHandler{Logger: core.NewNoOpLogger()}
	s := core.NewScheduler(config)

	s.RunAsync(context.Background(), core.RoutineFunc(func(ctx context.Context) core.Status {
		panic("boom")
	}))
	s.RunAsync(context.Background(), core.WaitTicks(0))
	s.Tick()

	require.Equal(t, int64(1), counterValue(t, scope, "task_panic", map[string]string{"scheduler": "game"}))
	require.Equal(t, int64(1), counterValue(t, scope, "task_ended", map[string]string{"scheduler": "game", "reason": "panicked"}))
	require.Equal(t, int64(1), counterValue(t, scope, "task_ended", map[string]string{"scheduler": "game", "reason": "completed"}))
	require.Equal(t, 2.0, gaugeValue(t, scope, "idle_runners", "game"))
}
