package core

import (
	"context"
	"io"
	"iter"
	"reflect"
	"runtime"
	"time"
)

// Status is what a Routine reports after one step.
type Status int

const (
	// Suspend yields control; the routine is stepped again on a later tick.
	Suspend Status = iota

	// Done ends the routine.
	Done
)

func (s Status) String() string {
	switch s {
	case Suspend:
		return "suspend"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Routine is a resumable unit of work. Step runs the routine up to its next
// suspension point and reports whether it wants to be resumed.
//
// A routine is forward-only and runs once; it is never rewound.
// Routines that also implement io.Closer are closed when they are discarded
// before finishing (Stop, SkipCurrent, cancellation).
type Routine interface {
	Step(ctx context.Context) Status
}

// RoutineFunc adapts a step function to Routine.
type RoutineFunc func(ctx context.Context) Status

func (f RoutineFunc) Step(ctx context.Context) Status { return f(ctx) }

// =============================================================================
// Naming
// =============================================================================

type namedRoutine struct {
	Routine
	name string
}

func (r namedRoutine) Name() string { return r.name }

func (r namedRoutine) Close() error {
	closeRoutine(r.Routine)
	return nil
}

// Named attaches a display name to r. The name shows up in execution history.
func Named(name string, r Routine) Routine {
	return namedRoutine{Routine: r, name: name}
}

func resolveRoutineName(r Routine) string {
	if n, ok := r.(interface{ Name() string }); ok && n.Name() != "" {
		return n.Name()
	}

	if r == nil {
		return "anonymous"
	}

	v := reflect.ValueOf(r)
	if v.Kind() != reflect.Func {
		return reflect.TypeOf(r).String()
	}

	pc := v.Pointer()
	if pc == 0 {
		return "anonymous"
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil || fn.Name() == "" {
		return "anonymous"
	}
	return fn.Name()
}

func closeRoutine(r Routine) {
	if c, ok := r.(io.Closer); ok {
		_ = c.Close()
	}
}

// =============================================================================
// Range-over-func adapter
// =============================================================================

type seqRoutine struct {
	seq  iter.Seq[struct{}]
	next func() (struct{}, bool)
	stop func()
}

// FromSeq adapts a Go sequence into a Routine. Every value the sequence
// yields is a suspension point; returning from the sequence ends the routine.
//
//	core.FromSeq(func(yield func(struct{}) bool) {
//		fmt.Println("first tick")
//		if !yield(struct{}{}) {
//			return
//		}
//		fmt.Println("second tick")
//	})
func FromSeq(seq iter.Seq[struct{}]) Routine {
	return &seqRoutine{seq: seq}
}

func (r *seqRoutine) Step(ctx context.Context) Status {
	if r.next == nil {
		r.next, r.stop = iter.Pull(r.seq)
	}
	if _, ok := r.next(); !ok {
		r.Close()
		return Done
	}
	return Suspend
}

// Close releases the pulled sequence. It is safe to call more than once.
func (r *seqRoutine) Close() error {
	if r.stop != nil {
		r.stop()
	}
	return nil
}

// =============================================================================
// Context Helper
// =============================================================================

// Tick describes the scheduler frame a routine is being stepped in.
type Tick struct {
	Frame uint64
	Time  time.Time
	Delta time.Duration
}

type schedulerKeyType struct{}

var schedulerKey schedulerKeyType

type taskKeyType struct{}

var taskKey taskKeyType

// CurrentScheduler returns the Scheduler stepping the routine that owns ctx.
func CurrentScheduler(ctx context.Context) *Scheduler {
	if v := ctx.Value(schedulerKey); v != nil {
		return v.(*Scheduler)
	}
	return nil
}

// CurrentTick returns the tick the calling routine is being stepped in.
// Outside a scheduler it returns the zero Tick.
func CurrentTick(ctx context.Context) Tick {
	if s := CurrentScheduler(ctx); s != nil {
		return s.tick
	}
	return Tick{}
}

// CurrentTask returns the handle of the task the calling routine belongs to.
func CurrentTask(ctx context.Context) TaskInfo {
	if v := ctx.Value(taskKey); v != nil {
		return v.(TaskInfo)
	}
	return TaskInfo{}
}
