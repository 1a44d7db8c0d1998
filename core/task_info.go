package core

import "context"

// TaskInfo is a handle to a task as it was when the handle was taken.
//
// It pairs the task id captured at creation with the runner that ran it. The
// handle never owns the runner: once the task chain finishes, the runner goes
// back to its pool and may run other tasks under new ids, and the handle
// simply stops being alive. Every method on a dead handle is a no-op.
//
// TaskInfo is a comparable value. Two handles are == when they captured the
// same id on the same runner; the zero TaskInfo equals only other zero handles.
type TaskInfo struct {
	id     TaskID
	runner *RoutineRunner
}

// TaskID returns the id captured by the handle.
func (t TaskInfo) TaskID() TaskID {
	return t.id
}

// IsAlive reports whether the task is still running or queued.
// It is safe to call from any goroutine.
func (t TaskInfo) IsAlive() bool {
	return t.runner != nil && !t.id.IsZero() && t.runner.ID() == t.id
}

// IsPaused reports whether the task is alive and paused.
func (t TaskInfo) IsPaused() bool {
	return t.IsAlive() && t.runner.IsPaused()
}

// Pause suspends the in-flight routine; queued routines are unaffected.
func (t TaskInfo) Pause() {
	if t.IsAlive() {
		t.runner.Pause()
	}
}

// Resume continues a paused routine from where it stopped.
func (t TaskInfo) Resume() {
	if t.IsAlive() {
		t.runner.Resume()
	}
}

// Stop ends the task and everything queued behind it, making the handle
// non-alive. It returns ErrStopNotAllowed when the scheduler policy forbids
// stopping tasks; on a dead handle it does nothing and returns nil.
func (t TaskInfo) Stop() error {
	if !t.IsAlive() {
		return nil
	}
	return t.runner.Stop()
}

// ContinueWith runs routine after the task. See ContinueWithContext.
func (t TaskInfo) ContinueWith(routine Routine) TaskInfo {
	return t.ContinueWithContext(context.Background(), routine)
}

// ContinueWithContext runs routine once the task, and everything already
// queued behind it, completes.
//
//   - alive handle: routine is queued on the same runner and the same handle
//     is returned; it stays alive until routine completes too.
//   - dead handle: routine starts as a new task on the scheduler that ran
//     the original task.
//   - zero handle: routine starts on a local scheduler of its own, see RunLocally.
//
// A nil routine leaves t unchanged.
func (t TaskInfo) ContinueWithContext(ctx context.Context, routine Routine) TaskInfo {
	if routine == nil {
		return t
	}
	if t.IsAlive() {
		_ = t.runner.Add(ctx, routine)
		return t
	}
	if t.runner != nil {
		return t.runner.owner.RunAsync(ctx, routine)
	}
	return RunLocally(ctx, routine)
}

// Wait returns a routine that suspends until the task is no longer alive.
// Queue it on another task to make that task wait for this one.
func (t TaskInfo) Wait() Routine {
	return RoutineFunc(func(ctx context.Context) Status {
		if t.IsAlive() {
			return Suspend
		}
		return Done
	})
}

func (t TaskInfo) String() string {
	if t.runner == nil {
		return t.id.String()
	}
	return t.id.String() + "@" + t.runner.name
}
