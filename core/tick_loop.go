package core

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultTickInterval  = 16 * time.Millisecond
	defaultLoopQueueSize = 100
)

// TickLoopConfig configures a TickLoop.
type TickLoopConfig struct {
	// Interval between ticks. Defaults to 16ms.
	Interval time.Duration

	// StopWhenIdle ends the loop on the first tick after which the scheduler
	// has no active runners and nothing is posted.
	StopWhenIdle bool

	// QueueSize is the buffer of the Post queue. Defaults to 100.
	QueueSize int
}

// TickLoop drives a Scheduler from a dedicated goroutine: it ticks the
// scheduler on a fixed interval and runs posted functions between ticks.
//
// Everything that touches the scheduler after Start must go through Post,
// since the scheduler is only safe on the loop goroutine.
type TickLoop struct {
	scheduler *Scheduler
	interval  time.Duration
	stopIdle  bool

	work chan func(*Scheduler)

	ctx    context.Context
	cancel context.CancelFunc

	started  atomic.Bool
	closed   atomic.Bool
	stopped  chan struct{}
	stopOnce sync.Once

	mu          sync.Mutex
	idleWaiters []chan struct{}
}

// NewTickLoop creates a loop for s. The loop does nothing until Start.
func NewTickLoop(s *Scheduler, cfg TickLoopConfig) *TickLoop {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultTickInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultLoopQueueSize
	}
	return &TickLoop{
		scheduler: s,
		interval:  cfg.Interval,
		stopIdle:  cfg.StopWhenIdle,
		work:      make(chan func(*Scheduler), cfg.QueueSize),
		stopped:   make(chan struct{}),
	}
}

// Scheduler returns the driven scheduler. Only touch it through Post.
func (l *TickLoop) Scheduler() *Scheduler {
	return l.scheduler
}

// Start spawns the loop goroutine. Cancelling ctx stops the loop.
// Calling Start more than once has no effect.
func (l *TickLoop) Start(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	l.ctx, l.cancel = context.WithCancel(ctx)
	go l.runLoop()
}

// Post queues fn to run on the loop goroutine before the next tick.
// It reports false when the loop is closed or the queue is full.
func (l *TickLoop) Post(fn func(*Scheduler)) bool {
	if fn == nil || l.closed.Load() {
		return false
	}
	select {
	case l.work <- fn:
		return true
	default:
		return false
	}
}

// Stop ends the loop and waits for the loop goroutine to exit.
// The scheduler is shut down on the way out.
func (l *TickLoop) Stop() {
	l.stopOnce.Do(func() {
		l.closed.Store(true)
		if !l.started.Load() {
			l.scheduler.Shutdown()
			close(l.stopped)
			return
		}
		l.cancel()
	})
	<-l.stopped
}

// Done is closed once the loop goroutine has exited.
func (l *TickLoop) Done() <-chan struct{} {
	return l.stopped
}

// IsStarted reports whether Start has been called.
func (l *TickLoop) IsStarted() bool {
	return l.started.Load()
}

// IsClosed reports whether the loop no longer accepts work.
func (l *TickLoop) IsClosed() bool {
	return l.closed.Load()
}

// WaitIdle blocks until a tick ends with no active runners and no posted
// work, the loop exits, or ctx is done.
func (l *TickLoop) WaitIdle(ctx context.Context) error {
	ch := make(chan struct{})
	l.mu.Lock()
	l.idleWaiters = append(l.idleWaiters, ch)
	l.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-l.stopped:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop is the only goroutine that touches the scheduler after Start.
func (l *TickLoop) runLoop() {
	defer close(l.stopped)
	defer l.scheduler.Shutdown()
	defer l.closed.Store(true)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.ctx.Done():
			return
		case fn := <-l.work:
			l.runPosted(fn)
		case <-ticker.C:
			l.drainPosted()
			l.scheduler.Tick()
			if l.scheduler.ActiveCount() > 0 || len(l.work) > 0 {
				continue
			}
			l.notifyIdle()
			if l.stopIdle {
				return
			}
		}
	}
}

func (l *TickLoop) drainPosted() {
	for {
		select {
		case fn := <-l.work:
			l.runPosted(fn)
		default:
			return
		}
	}
}

func (l *TickLoop) runPosted(fn func(*Scheduler)) {
	defer func() {
		if rec := recover(); rec != nil {
			l.scheduler.logger.Error("posted function panicked",
				F("scheduler", l.scheduler.name),
				F("panic", rec),
				F("stack", string(debug.Stack())),
			)
		}
	}()
	fn(l.scheduler)
}

func (l *TickLoop) notifyIdle() {
	l.mu.Lock()
	waiters := l.idleWaiters
	l.idleWaiters = nil
	l.mu.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
}

// RunLocally starts routine on a fresh scheduler named "local" driven by its
// own TickLoop, which exits once the routine and its continuations finish.
//
// The returned handle can be polled with IsAlive from any goroutine. Its
// other methods touch the local scheduler and are not safe to call while
// the loop runs.
func RunLocally(ctx context.Context, routine Routine) TaskInfo {
	if routine == nil {
		return TaskInfo{}
	}
	config := DefaultSchedulerConfig()
	config.Name = "local"
	s := NewScheduler(config)
	h := s.RunAsync(ctx, routine)

	loop := NewTickLoop(s, TickLoopConfig{StopWhenIdle: true})
	loop.Start(context.Background())
	return h
}
