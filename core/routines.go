package core

import (
	"context"
	"time"
)

// Steps runs one function per tick, in order, then ends.
func Steps(fns ...func(ctx context.Context)) Routine {
	i := 0
	return RoutineFunc(func(ctx context.Context) Status {
		if i >= len(fns) {
			return Done
		}
		fns[i](ctx)
		i++
		if i >= len(fns) {
			return Done
		}
		return Suspend
	})
}

// WaitTicks suspends for n ticks and then ends. n <= 0 ends on the first step.
func WaitTicks(n int) Routine {
	return AfterTicks(n, nil)
}

// AfterTicks waits n ticks and then calls fn.
//
// The first step of a routine happens on the tick after it was started, so
// AfterTicks(1, fn) runs fn one tick after that first step.
func AfterTicks(n int, fn func()) Routine {
	waited := 0
	return RoutineFunc(func(ctx context.Context) Status {
		if waited < n {
			waited++
			return Suspend
		}
		if fn != nil {
			fn()
		}
		return Done
	})
}

// NextTick calls fn on the tick after the routine's first step.
func NextTick(fn func()) Routine {
	return AfterTicks(1, fn)
}

// Delay waits until d has elapsed on the scheduler clock and then calls fn.
// Elapsed time is measured from the routine's first step.
func Delay(d time.Duration, fn func()) Routine {
	var deadline time.Time
	return RoutineFunc(func(ctx context.Context) Status {
		now := CurrentTick(ctx).Time
		if deadline.IsZero() {
			deadline = now.Add(d)
		}
		if now.Before(deadline) {
			return Suspend
		}
		if fn != nil {
			fn()
		}
		return Done
	})
}

// When waits until cond reports true and then calls fn.
func When(cond func() bool, fn func()) Routine {
	return RoutineFunc(func(ctx context.Context) Status {
		if !cond() {
			return Suspend
		}
		if fn != nil {
			fn()
		}
		return Done
	})
}

// While calls fn once per tick for as long as cond reports true.
func While(cond func() bool, fn func()) Routine {
	return RoutineFunc(func(ctx context.Context) Status {
		if !cond() {
			return Done
		}
		fn()
		return Suspend
	})
}

type sequence struct {
	routines []Routine
	current  int
}

// Sequence runs routines back to back inside a single task. A routine that
// finishes hands over to the next one on the following tick.
func Sequence(routines ...Routine) Routine {
	return &sequence{routines: routines}
}

func (s *sequence) Step(ctx context.Context) Status {
	if s.current >= len(s.routines) {
		return Done
	}
	if s.routines[s.current].Step(ctx) == Done {
		s.current++
		if s.current >= len(s.routines) {
			return Done
		}
	}
	return Suspend
}

func (s *sequence) Close() error {
	for i := s.current; i < len(s.routines); i++ {
		closeRoutine(s.routines[i])
	}
	return nil
}
