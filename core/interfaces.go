package core

import (
	"context"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling routine panics
// =============================================================================

// PanicHandler is called when a routine panics while being stepped.
// The routine is ended with EndPanicked; the runner moves on to its queue.
type PanicHandler interface {
	// HandlePanic is called when a routine panics.
	//
	// Parameters:
	// - ctx: The routine's step context (CurrentTask / CurrentTick work on it)
	// - schedulerName: The name of the scheduler that stepped the routine
	// - runnerName: The name of the runner that owned the routine
	// - panicInfo: The panic value recovered from the routine
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, schedulerName, runnerName string, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler reports panics through a Logger.
type DefaultPanicHandler struct {
	Logger Logger
}

// HandlePanic logs panic information at error level.
func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, schedulerName, runnerName string, panicInfo any, stackTrace []byte) {
	logger := h.Logger
	if logger == nil {
		logger = NewDefaultLogger()
	}
	logger.Error("routine panicked",
		F("scheduler", schedulerName),
		F("runner", runnerName),
		F("task", CurrentTask(ctx).TaskID()),
		F("panic", panicInfo),
		F("stack", string(stackTrace)),
	)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting scheduler metrics.
// Implementations can send metrics to monitoring systems (Prometheus, tally, etc.).
//
// Methods are called from the scheduling goroutine, once per event or once per
// tick; they should be non-blocking and fast.
type Metrics interface {
	// RecordTaskDuration records how long a routine ran, in wall time and in ticks.
	RecordTaskDuration(schedulerName string, duration time.Duration, ticks uint64)

	// RecordTaskEnded records that a routine ended and why.
	RecordTaskEnded(schedulerName string, reason EndReason)

	// RecordTaskPanic records that a routine panicked.
	RecordTaskPanic(schedulerName string, panicInfo any)

	// RecordTick records one scheduler tick: its duration, the number of
	// active runners after it and the number of idle pooled runners.
	RecordTick(schedulerName string, duration time.Duration, activeRunners, idleRunners int)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(schedulerName string, duration time.Duration, ticks uint64) {
}

func (m *NilMetrics) RecordTaskEnded(schedulerName string, reason EndReason) {}

func (m *NilMetrics) RecordTaskPanic(schedulerName string, panicInfo any) {}

func (m *NilMetrics) RecordTick(schedulerName string, duration time.Duration, activeRunners, idleRunners int) {
}

// =============================================================================
// SchedulerConfig: Configuration for Scheduler
// =============================================================================

// Policy is the stop/persistence policy of a Scheduler.
type Policy struct {
	// CanBeStopped allows TaskInfo.Stop and RoutineRunner.Stop.
	CanBeStopped bool

	// CanBeStoppedGlobally allows RegisterStopper.
	CanBeStoppedGlobally bool

	// PersistAcrossUnload keeps idle runners pooled when NotifyUnload is called.
	PersistAcrossUnload bool
}

// DefaultPolicy is used when no settings are found.
func DefaultPolicy() Policy {
	return Policy{
		CanBeStopped:         true,
		CanBeStoppedGlobally: false,
		PersistAcrossUnload:  true,
	}
}

// SchedulerConfig holds configuration options for Scheduler.
// Zero and nil fields fall back to the defaults of DefaultSchedulerConfig.
type SchedulerConfig struct {
	// Name labels logs, metrics and history records.
	Name string

	Policy Policy

	// PoolCapacity bounds the number of idle runners kept for reuse.
	// A negative value means unbounded.
	PoolCapacity int

	// PrewarmRunners runners are created and pooled at construction.
	PrewarmRunners int

	// RunnerName prefixes runner names ("Task-1", "Task-2", ...).
	RunnerName string

	// HistoryCapacity bounds the execution history ring buffer.
	HistoryCapacity int

	// Clock supplies tick timestamps. Defaults to time.Now.
	Clock func() time.Time

	IDGenerator  IDGenerator
	PanicHandler PanicHandler
	Metrics      Metrics
	Logger       Logger
}

const (
	defaultSchedulerName = "scheduler"
	defaultRunnerName    = "Task"
)

// DefaultSchedulerConfig returns a config with default policy and handlers.
func DefaultSchedulerConfig() *SchedulerConfig {
	logger := NewDefaultLogger()
	return &SchedulerConfig{
		Name:            defaultSchedulerName,
		Policy:          DefaultPolicy(),
		PoolCapacity:    defaultPoolCapacity,
		RunnerName:      defaultRunnerName,
		HistoryCapacity: defaultTaskHistoryCapacity,
		Clock:           time.Now,
		IDGenerator:     NewSequentialIDGenerator(),
		PanicHandler:    &DefaultPanicHandler{Logger: logger},
		Metrics:         &NilMetrics{},
		Logger:          logger,
	}
}
