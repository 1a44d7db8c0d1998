package core

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Scheduler is the explicit scope for cooperative routines: it owns a pool of
// RoutineRunners, the id generator that tells tasks apart, the stop policy,
// and the registry of active runners it advances on every Tick.
//
// A Scheduler is single-threaded. Tick and every method that starts, stops or
// inspects work must be called from one goroutine, usually the host's frame
// loop or a TickLoop. Snapshot and TaskInfo.IsAlive are the exceptions and may
// be called from anywhere.
type Scheduler struct {
	id         string
	name       string
	policy     Policy
	runnerName string
	clock      func() time.Time

	pool    *ObjectPool[*RoutineRunner]
	ids     IDGenerator
	created int

	active  []*RoutineRunner
	scratch []*RoutineRunner
	tick    Tick
	ticking bool

	stopper       Stopper
	stopListeners []func()

	history  executionHistory
	snapshot atomic.Pointer[SchedulerStats]
	shutdown bool

	panicHandler PanicHandler
	metrics      Metrics
	logger       Logger
}

// NewScheduler creates a Scheduler from config. A nil config means
// DefaultSchedulerConfig(). Nil handlers and zero sizes fall back to their
// defaults; Policy is used as given.
func NewScheduler(config *SchedulerConfig) *Scheduler {
	defaults := DefaultSchedulerConfig()
	if config == nil {
		config = defaults
	}

	s := &Scheduler{
		id:           uuid.NewString(),
		name:         config.Name,
		policy:       config.Policy,
		runnerName:   config.RunnerName,
		clock:        config.Clock,
		ids:          config.IDGenerator,
		panicHandler: config.PanicHandler,
		metrics:      config.Metrics,
		logger:       config.Logger,
		history:      newExecutionHistory(config.HistoryCapacity),
	}

	// Use defaults if not provided
	if s.name == "" {
		s.name = defaults.Name
	}
	if s.runnerName == "" {
		s.runnerName = defaults.RunnerName
	}
	if s.clock == nil {
		s.clock = defaults.Clock
	}
	if s.ids == nil {
		s.ids = defaults.IDGenerator
	}
	if s.logger == nil {
		s.logger = defaults.Logger
	}
	if s.panicHandler == nil {
		s.panicHandler = &DefaultPanicHandler{Logger: s.logger}
	}
	if s.metrics == nil {
		s.metrics = defaults.Metrics
	}

	capacity := config.PoolCapacity
	switch {
	case capacity == 0:
		capacity = defaultPoolCapacity
	case capacity < 0:
		capacity = 0 // unbounded
	}
	// Storage and factory are never nil here.
	s.pool, _ = NewObjectPool[*RoutineRunner](
		NewQueueStorage[*RoutineRunner](capacity),
		FactoryFunc[*RoutineRunner](s.createRunner),
	)
	if config.PrewarmRunners > 0 {
		s.pool.Prewarm(config.PrewarmRunners)
	}

	s.publish()
	return s
}

func (s *Scheduler) ID() string         { return s.id }
func (s *Scheduler) Name() string       { return s.name }
func (s *Scheduler) Policy() Policy     { return s.policy }
func (s *Scheduler) CanBeStopped() bool { return s.policy.CanBeStopped }
func (s *Scheduler) Frame() uint64      { return s.tick.Frame }
func (s *Scheduler) CurrentTick() Tick  { return s.tick }
func (s *Scheduler) ActiveCount() int   { return len(s.active) }
func (s *Scheduler) IdleCount() int     { return s.pool.Len() }
func (s *Scheduler) IsShutdown() bool   { return s.shutdown }

func (s *Scheduler) CanBeStoppedGlobally() bool { return s.policy.CanBeStoppedGlobally }

// NewID issues a fresh task id.
func (s *Scheduler) NewID() TaskID {
	return s.ids.NewID()
}

// GetRunner hands out an active runner with a fresh id, reusing a pooled one
// when available. A runner that has not been given work by the next tick is
// reclaimed. GetRunner returns nil after Shutdown.
func (s *Scheduler) GetRunner() *RoutineRunner {
	if s.shutdown {
		return nil
	}
	r := s.pool.Get()
	r.activate()
	return r
}

// Release hands r back to the pool. It reports whether the pool kept it;
// runners the pool rejects are dropped.
func (s *Scheduler) Release(r *RoutineRunner) bool {
	if r == nil || r.owner != s || r.IsReleased() {
		return false
	}
	if s.shutdown {
		r.CleanUp()
		r.dispose()
		return false
	}
	if s.pool.Release(r) {
		return true
	}
	r.dispose()
	return false
}

// RunAsync starts routine on a runner from the pool and returns its handle.
// A nil routine, or a call after Shutdown, yields the zero TaskInfo.
func (s *Scheduler) RunAsync(ctx context.Context, routine Routine) TaskInfo {
	if routine == nil {
		return TaskInfo{}
	}
	r := s.GetRunner()
	if r == nil {
		s.logger.Warn("task rejected after shutdown", F("scheduler", s.name))
		return TaskInfo{}
	}
	h, err := r.RunAsync(ctx, routine)
	if err != nil {
		s.Release(r)
		return TaskInfo{}
	}
	return h
}

// RunNextTick calls fn on the tick after the task's first step.
func (s *Scheduler) RunNextTick(fn func()) TaskInfo {
	return s.RunAsync(context.Background(), NextTick(fn))
}

// RunAfterTicks calls fn after n ticks.
func (s *Scheduler) RunAfterTicks(n int, fn func()) TaskInfo {
	return s.RunAsync(context.Background(), AfterTicks(n, fn))
}

// RunDelayed calls fn once d has elapsed on the scheduler clock.
func (s *Scheduler) RunDelayed(d time.Duration, fn func()) TaskInfo {
	return s.RunAsync(context.Background(), Delay(d, fn))
}

// RunWhen calls fn on the first tick cond reports true.
func (s *Scheduler) RunWhen(cond func() bool, fn func()) TaskInfo {
	return s.RunAsync(context.Background(), When(cond, fn))
}

// RunWhile calls fn every tick while cond reports true.
func (s *Scheduler) RunWhile(cond func() bool, fn func()) TaskInfo {
	return s.RunAsync(context.Background(), While(cond, fn))
}

// Tick advances every active runner by one step, in activation order.
// Runners activated during a tick take their first step on the next one.
func (s *Scheduler) Tick() {
	if s.ticking || s.shutdown {
		return
	}
	s.ticking = true
	defer func() { s.ticking = false }()

	now := s.clock()
	var delta time.Duration
	if !s.tick.Time.IsZero() {
		delta = now.Sub(s.tick.Time)
	}
	s.tick = Tick{Frame: s.tick.Frame + 1, Time: now, Delta: delta}
	frame := s.tick.Frame

	s.scratch = append(s.scratch[:0], s.active...)
	for _, r := range s.scratch {
		if !r.registered || r.activatedFrame == frame {
			continue
		}
		r.tick()
	}
	clear(s.scratch)

	s.metrics.RecordTick(s.name, s.clock().Sub(now), len(s.active), s.pool.Len())
	s.publish()
}

// =============================================================================
// Global stop
// =============================================================================

// RegisterStopper wires an external "stop everything" signal to this
// scheduler. When the stopper fires, every active task is stopped and the
// OnStopTasks listeners run.
func (s *Scheduler) RegisterStopper(stopper Stopper) error {
	if !s.policy.CanBeStoppedGlobally {
		return ErrGlobalStopDisabled
	}
	if stopper == nil {
		return ErrNilStopper
	}
	if s.stopper != nil {
		return ErrStopperRegistered
	}

	s.stopper = stopper
	stopper.Subscribe(s.onGlobalStop)
	s.logger.Info("stopper registered", F("scheduler", s.name))
	return nil
}

// OnStopTasks adds a listener for the registered stopper's signal.
func (s *Scheduler) OnStopTasks(fn func()) {
	if fn != nil {
		s.stopListeners = append(s.stopListeners, fn)
	}
}

func (s *Scheduler) onGlobalStop() {
	if s.shutdown {
		return
	}
	if err := s.StopAll(); err != nil {
		s.logger.Warn("global stop ignored", F("scheduler", s.name), F("error", err))
	}
	for _, fn := range s.stopListeners {
		fn()
	}
}

// StopAll stops every active task. It returns ErrStopNotAllowed when the
// policy forbids stopping tasks.
func (s *Scheduler) StopAll() error {
	if !s.policy.CanBeStopped {
		return ErrStopNotAllowed
	}
	for _, r := range slices.Clone(s.active) {
		if err := r.Stop(); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Scope lifecycle
// =============================================================================

// NotifyUnload tells the scheduler its hosting world/scene went away.
// Unless the policy persists runners across unloads, idle runners are dropped.
func (s *Scheduler) NotifyUnload() {
	if s.policy.PersistAcrossUnload {
		return
	}
	n := s.pool.Len()
	s.pool.ClearWith(func(r *RoutineRunner) { r.dispose() })
	s.logger.Info("idle runners cleared on unload", F("scheduler", s.name), F("count", n))
	s.publish()
}

// Shutdown tears the scope down: active tasks are terminated regardless of
// policy, the pool is emptied, and no new work is accepted.
func (s *Scheduler) Shutdown() {
	if s.shutdown {
		return
	}
	for _, r := range slices.Clone(s.active) {
		r.terminate(EndStopped)
	}
	s.shutdown = true
	s.pool.ClearWith(func(r *RoutineRunner) { r.dispose() })
	s.stopListeners = nil
	s.publish()
}

// =============================================================================
// Observability
// =============================================================================

// Stats computes current stats. Call it from the scheduling goroutine.
func (s *Scheduler) Stats() SchedulerStats {
	stats := SchedulerStats{
		ID:      s.id,
		Name:    s.name,
		Frame:   s.tick.Frame,
		Active:  len(s.active),
		Idle:    s.pool.Len(),
		Created: s.created,
		Stopped: s.shutdown,
	}
	for _, r := range s.active {
		stats.Pending += r.Pending()
		if r.IsPaused() {
			stats.Paused++
		}
	}
	return stats
}

// Snapshot returns the stats published at the end of the last tick.
// It is safe to call from any goroutine.
func (s *Scheduler) Snapshot() SchedulerStats {
	if p := s.snapshot.Load(); p != nil {
		return *p
	}
	return SchedulerStats{ID: s.id, Name: s.name}
}

// RecentTasks returns up to limit finished routine runs, newest first.
func (s *Scheduler) RecentTasks(limit int) []TaskExecutionRecord {
	return s.history.Recent(limit)
}

// LastTask returns the most recently finished routine run.
func (s *Scheduler) LastTask() (TaskExecutionRecord, bool) {
	return s.history.Last()
}

func (s *Scheduler) publish() {
	stats := s.Stats()
	s.snapshot.Store(&stats)
}

// =============================================================================
// Runner bookkeeping
// =============================================================================

func (s *Scheduler) createRunner() *RoutineRunner {
	s.created++
	r := newRoutineRunner(s, fmt.Sprintf("%s-%d", s.runnerName, s.created))
	s.logger.Debug("runner created", F("scheduler", s.name), F("runner", r.name))
	return r
}

func (s *Scheduler) register(r *RoutineRunner) {
	if r.registered {
		return
	}
	r.registered = true
	r.activatedFrame = s.tick.Frame
	s.active = append(s.active, r)
}

func (s *Scheduler) unregister(r *RoutineRunner) {
	if !r.registered {
		return
	}
	r.registered = false
	if i := slices.Index(s.active, r); i >= 0 {
		s.active = slices.Delete(s.active, i, i+1)
	}
}

func (s *Scheduler) recordEnd(r *RoutineRunner, reason EndReason) {
	rec := r.current.finish(r.ID(), r.name, s.name, s.tick.Frame, s.clock(), reason)
	s.history.Add(rec)
	s.metrics.RecordTaskEnded(s.name, reason)
	s.metrics.RecordTaskDuration(s.name, rec.Duration, rec.Ticks())
}

func (s *Scheduler) handlePanic(r *RoutineRunner, ctx context.Context, rec any, stack []byte) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.panicHandler.HandlePanic(ctx, s.name, r.name, rec, stack)
	s.metrics.RecordTaskPanic(s.name, rec)
}
