package routinerunner

import "github.com/Swind/go-routine-runner/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the routinerunner package for most use cases.

// Routine is a resumable unit of work
type Routine = core.Routine

// RoutineFunc adapts a step function to Routine
type RoutineFunc = core.RoutineFunc

// Status is what a Routine reports after one step
type Status = core.Status

// TaskInfo is a handle to a running task
type TaskInfo = core.TaskInfo

// TaskID identifies a task within a Scheduler
type TaskID = core.TaskID

// Scheduler owns the runner pool and advances routines every tick
type Scheduler = core.Scheduler

// SchedulerConfig configures a Scheduler
type SchedulerConfig = core.SchedulerConfig

// Policy is the stop/persistence policy of a Scheduler
type Policy = core.Policy

// Settings is the TOML-backed scheduler configuration
type Settings = core.Settings

// EndReason tells why a routine stopped running
type EndReason = core.EndReason

// Stopper is an external "stop every task" signal
type Stopper = core.Stopper

// Status constants
const (
	Suspend = core.Suspend
	Done    = core.Done
)

// Routine builders
var (
	Steps      = core.Steps
	WaitTicks  = core.WaitTicks
	AfterTicks = core.AfterTicks
	NextTick   = core.NextTick
	Delay      = core.Delay
	When       = core.When
	While      = core.While
	Sequence   = core.Sequence
	FromSeq    = core.FromSeq
	Named      = core.Named
)

// Context helpers
var (
	CurrentScheduler = core.CurrentScheduler
	CurrentTick      = core.CurrentTick
	CurrentTask      = core.CurrentTask
)

// Configuration helpers
var (
	DefaultPolicy          = core.DefaultPolicy
	DefaultSettings        = core.DefaultSettings
	DefaultSchedulerConfig = core.DefaultSchedulerConfig
	LoadSettings           = core.LoadSettings
)

// NewScheduler creates a Scheduler. A nil config means DefaultSchedulerConfig().
func NewScheduler(config *SchedulerConfig) *Scheduler {
	return core.NewScheduler(config)
}
