package routinerunner

import (
	"context"
	"io/fs"

	"github.com/Swind/go-routine-runner/core"
)

// Host pairs a Scheduler with the TickLoop that drives it, for programs
// without a frame loop of their own.
type Host struct {
	scheduler *core.Scheduler
	loop      *core.TickLoop
}

// NewHost creates a stopped Host named name from settings.
func NewHost(name string, settings Settings) *Host {
	s := core.NewScheduler(settings.SchedulerConfig(name))
	return &Host{
		scheduler: s,
		loop:      core.NewTickLoop(s, core.TickLoopConfig{Interval: settings.TickInterval()}),
	}
}

// NewHostFromFS loads settings from fsys (see LoadSettings) and creates a Host.
func NewHostFromFS(name string, fsys fs.FS, settingsName string) (*Host, error) {
	settings, err := core.LoadSettings(fsys, settingsName)
	if err != nil {
		return nil, err
	}
	return NewHost(name, settings), nil
}

// Start begins ticking. Cancelling ctx stops the host.
func (h *Host) Start(ctx context.Context) {
	h.loop.Start(ctx)
}

// Stop ends the loop and shuts the scheduler down. Do not call it from a routine.
func (h *Host) Stop() {
	h.loop.Stop()
}

// Post runs fn on the scheduling goroutine before the next tick.
func (h *Host) Post(fn func(*Scheduler)) bool {
	return h.loop.Post(fn)
}

// RunAsync starts routine on the scheduling goroutine and waits for its handle.
// It must not be called from a routine of this host; use the Scheduler
// from CurrentScheduler there. It returns ErrLoopNotStarted before Start.
func (h *Host) RunAsync(ctx context.Context, routine Routine) (TaskInfo, error) {
	if !h.loop.IsStarted() {
		return TaskInfo{}, core.ErrLoopNotStarted
	}
	handle := make(chan TaskInfo, 1)
	if !h.loop.Post(func(s *Scheduler) { handle <- s.RunAsync(ctx, routine) }) {
		return TaskInfo{}, core.ErrLoopClosed
	}
	select {
	case t := <-handle:
		return t, nil
	case <-h.loop.Done():
		return TaskInfo{}, core.ErrLoopClosed
	case <-ctx.Done():
		return TaskInfo{}, ctx.Err()
	}
}

// WaitIdle blocks until a tick ends with no active tasks.
func (h *Host) WaitIdle(ctx context.Context) error {
	return h.loop.WaitIdle(ctx)
}

// Snapshot returns the scheduler stats published by the last tick.
func (h *Host) Snapshot() core.SchedulerStats {
	return h.scheduler.Snapshot()
}
