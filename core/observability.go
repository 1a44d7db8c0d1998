package core

import "time"

// TaskExecutionRecord captures one routine run on a runner, from its first
// step to its end. Routines chained on the same runner share a TaskID.
type TaskExecutionRecord struct {
	TaskID       TaskID
	Name         string
	Runner       string
	Scheduler    string
	StartedFrame uint64
	EndedFrame   uint64
	StartedAt    time.Time
	FinishedAt   time.Time
	Duration     time.Duration
	Reason       EndReason
}

// Ticks is the number of frames the routine spanned.
func (r TaskExecutionRecord) Ticks() uint64 {
	if r.EndedFrame < r.StartedFrame {
		return 0
	}
	return r.EndedFrame - r.StartedFrame
}

// RunnerStats represents runtime observability state for a routine runner.
type RunnerStats struct {
	Name    string
	TaskID  TaskID
	Running bool
	Paused  bool
	Pending int
}

// SchedulerStats represents runtime observability state for a scheduler.
type SchedulerStats struct {
	ID      string
	Name    string
	Frame   uint64
	Active  int
	Idle    int
	Pending int
	Paused  int
	Created int
	Stopped bool
}
