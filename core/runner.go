package core

import (
	"context"
	"runtime/debug"
	"sync/atomic"
)

// RoutineRunner is a pooled executor. It owns one RoutineIterator and a FIFO
// queue of pending routines, runs them one after another, and hands itself
// back to its Scheduler's pool once both are empty.
//
// All routines run by one runner between two pool round-trips share a single
// TaskID, so a TaskInfo stays alive across the whole chain.
//
// RoutineRunner is driven by its Scheduler and is not safe for concurrent
// use. Only ID may be read from other goroutines.
type RoutineRunner struct {
	id       atomic.Uint64
	name     string
	owner    *Scheduler
	iterator *RoutineIterator
	queue    *RoutineQueue
	current  runRecord

	registered     bool
	activatedFrame uint64
	pooled         bool
	disposed       bool
}

func newRoutineRunner(owner *Scheduler, name string) *RoutineRunner {
	r := &RoutineRunner{
		name:   name,
		owner:  owner,
		queue:  NewRoutineQueue(),
		pooled: true,
	}
	r.iterator = NewRoutineIterator(r)
	return r
}

// ID returns the current task id, NoTask while the runner is pooled.
func (r *RoutineRunner) ID() TaskID {
	return TaskID(r.id.Load())
}

func (r *RoutineRunner) Name() string       { return r.name }
func (r *RoutineRunner) Owner() *Scheduler  { return r.owner }
func (r *RoutineRunner) IsPaused() bool     { return r.iterator.IsPaused() }
func (r *RoutineRunner) IsRunning() bool    { return !r.iterator.IsEmpty() }
func (r *RoutineRunner) Pending() int       { return r.queue.Len() }
func (r *RoutineRunner) IsReleased() bool   { return r.pooled || r.disposed }
func (r *RoutineRunner) handle() TaskInfo   { return TaskInfo{id: r.ID(), runner: r} }
func (r *RoutineRunner) Stats() RunnerStats { return r.stats() }

func (r *RoutineRunner) stats() RunnerStats {
	return RunnerStats{
		Name:    r.name,
		TaskID:  r.ID(),
		Running: r.IsRunning(),
		Paused:  r.IsPaused(),
		Pending: r.queue.Len(),
	}
}

// RunAsync starts routine on this runner. Its first step happens on the
// scheduler's next tick.
//
// It returns ErrIteratorFilled when a routine is already in flight (use Add
// to queue behind it) and ErrRunnerReleased when the runner is pooled.
func (r *RoutineRunner) RunAsync(ctx context.Context, routine Routine) (TaskInfo, error) {
	if r.IsReleased() {
		return TaskInfo{}, ErrRunnerReleased
	}
	if err := r.run(ctx, routine); err != nil {
		return TaskInfo{}, err
	}
	return r.handle(), nil
}

// Add queues routine behind the in-flight one. It does not interrupt the
// current routine; queued routines run in insertion order.
func (r *RoutineRunner) Add(ctx context.Context, routine Routine) error {
	if routine == nil {
		return ErrNilRoutine
	}
	if r.IsReleased() {
		return ErrRunnerReleased
	}
	if ctx == nil {
		ctx = context.Background()
	}
	r.queue.Push(ctx, routine)
	return nil
}

// StartRunning starts the oldest queued routine if nothing is in flight.
// The scheduler also does this on every tick.
func (r *RoutineRunner) StartRunning() {
	if !r.iterator.IsEmpty() || r.IsReleased() {
		return
	}
	if item, ok := r.queue.Pop(); ok {
		_ = r.run(item.Ctx, item.Routine)
	}
}

func (r *RoutineRunner) Pause()  { r.iterator.Pause(true) }
func (r *RoutineRunner) Resume() { r.iterator.Pause(false) }

// SkipCurrent ends the in-flight routine right away and moves on to the
// queue, as if the routine had completed.
func (r *RoutineRunner) SkipCurrent() {
	if r.IsReleased() {
		return
	}
	ended := !r.iterator.IsEmpty()
	r.iterator.Reset()
	r.advance(EndSkipped, ended)
}

// Stop ends the in-flight routine, drops the queue and returns the runner to
// its pool. It returns ErrStopNotAllowed when the scheduler policy forbids
// stopping tasks.
func (r *RoutineRunner) Stop() error {
	if r.IsReleased() {
		return nil
	}
	if !r.owner.policy.CanBeStopped {
		r.owner.logger.Warn("stop refused by policy", F("scheduler", r.owner.name), F("runner", r.name))
		return ErrStopNotAllowed
	}
	r.terminate(EndStopped)
	return nil
}

// terminate is Stop without the policy check.
func (r *RoutineRunner) terminate(reason EndReason) {
	ended := !r.iterator.IsEmpty()
	r.queue.Clear()
	r.iterator.Reset()
	r.advance(reason, ended)
}

func (r *RoutineRunner) onRoutineEnded(reason EndReason) {
	r.advance(reason, true)
}

// advance runs the end-of-routine bookkeeping: the next queued routine
// starts under the same id, or the runner goes back to the pool.
func (r *RoutineRunner) advance(reason EndReason, ended bool) {
	if ended {
		r.owner.recordEnd(r, reason)
	}
	r.iterator.Reset()

	if item, ok := r.queue.Pop(); ok {
		_ = r.run(item.Ctx, item.Routine)
		return
	}

	r.id.Store(uint64(NoTask))
	r.owner.Release(r)
}

func (r *RoutineRunner) run(ctx context.Context, routine Routine) error {
	if ctx == nil {
		ctx = context.Background()
	}
	stepCtx := context.WithValue(ctx, schedulerKey, r.owner)
	stepCtx = context.WithValue(stepCtx, taskKey, r.handle())
	if err := r.iterator.Fill(stepCtx, routine); err != nil {
		return err
	}
	r.current = runRecord{
		name:         resolveRoutineName(routine),
		startedFrame: r.owner.tick.Frame,
		startedAt:    r.owner.clock(),
	}
	return nil
}

// tick is the per-frame callback the scheduler invokes while the runner is active.
func (r *RoutineRunner) tick() {
	r.StartRunning()
	if r.iterator.IsEmpty() {
		// Handed out by GetRunner but never given any work.
		r.id.Store(uint64(NoTask))
		r.owner.Release(r)
		return
	}

	stepCtx := r.iterator.ctx
	gen := r.iterator.gen
	defer func() {
		if rec := recover(); rec != nil {
			r.owner.handlePanic(r, stepCtx, rec, debug.Stack())
			// A step that stopped or skipped itself before panicking has
			// already moved the runner on; the iterator holds the next routine.
			if r.IsReleased() || r.iterator.gen != gen {
				return
			}
			ended := !r.iterator.IsEmpty()
			r.iterator.Reset()
			r.advance(EndPanicked, ended)
		}
	}()

	r.iterator.MoveNext()
}

// =============================================================================
// Poolable
// =============================================================================

// Reinit is called by the pool when the runner is handed out again.
func (r *RoutineRunner) Reinit() {
	r.pooled = false
}

// CleanUp is called by the pool when the runner is handed back.
func (r *RoutineRunner) CleanUp() {
	r.owner.unregister(r)
	r.queue.Clear()
	r.iterator.Reset()
	r.current = runRecord{}
	r.id.Store(uint64(NoTask))
	r.pooled = true
}

func (r *RoutineRunner) activate() {
	r.pooled = false
	r.id.Store(uint64(r.owner.NewID()))
	r.owner.register(r)
}

func (r *RoutineRunner) dispose() {
	r.disposed = true
}
