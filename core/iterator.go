package core

import "context"

// EndReason tells why a routine stopped running.
type EndReason int

const (
	EndCompleted EndReason = iota
	EndSkipped
	EndStopped
	EndCanceled
	EndPanicked
)

func (r EndReason) String() string {
	switch r {
	case EndCompleted:
		return "completed"
	case EndSkipped:
		return "skipped"
	case EndStopped:
		return "stopped"
	case EndCanceled:
		return "canceled"
	case EndPanicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// routineOwner is notified once per Fill when the held routine ends on its own.
type routineOwner interface {
	onRoutineEnded(reason EndReason)
}

// RoutineIterator adapts a single Routine to a driver that advances it one
// step per tick, with pause support.
//
// States: Empty -> Filled (Fill) -> Empty (routine done, cancelled or Reset).
type RoutineIterator struct {
	owner   routineOwner
	routine Routine
	ctx     context.Context
	paused  bool
	gen     uint64
}

func NewRoutineIterator(owner routineOwner) *RoutineIterator {
	return &RoutineIterator{owner: owner}
}

// Fill hands r to the iterator. ctx is passed to every step; cancelling it
// ends the routine at its next step.
func (it *RoutineIterator) Fill(ctx context.Context, r Routine) error {
	if r == nil {
		return ErrNilRoutine
	}
	if it.routine != nil {
		return ErrIteratorFilled
	}
	if ctx == nil {
		ctx = context.Background()
	}
	it.routine = r
	it.ctx = ctx
	it.gen++
	return nil
}

// Pause sets or clears the pause flag. A paused iterator keeps its position.
func (it *RoutineIterator) Pause(paused bool) {
	it.paused = paused
}

func (it *RoutineIterator) IsPaused() bool { return it.paused }
func (it *RoutineIterator) IsEmpty() bool  { return it.routine == nil }

// Reset returns the iterator to Empty, discarding what is left of the routine.
func (it *RoutineIterator) Reset() {
	if it.routine != nil {
		closeRoutine(it.routine)
	}
	it.routine = nil
	it.ctx = nil
	it.paused = false
	it.gen++
}

// MoveNext advances the routine by one step and reports whether it is still
// running. While paused it does nothing and reports true; a cancelled
// context still ends a paused routine.
//
// When the routine ends, the owner's callback runs before MoveNext returns.
// The callback may Reset and refill the iterator.
func (it *RoutineIterator) MoveNext() bool {
	if it.routine == nil {
		return false
	}
	if it.ctx.Err() != nil {
		it.end(EndCanceled)
		return false
	}

	if it.paused {
		return true
	}

	gen := it.gen
	status := it.routine.Step(it.ctx)
	if it.gen != gen {
		// The step stopped, skipped or refilled its own runner.
		return !it.IsEmpty()
	}
	if status == Suspend {
		return true
	}

	it.end(EndCompleted)
	return false
}

func (it *RoutineIterator) end(reason EndReason) {
	// Detach first so a Reset inside the callback does not close a routine
	// that already ran to completion.
	r := it.routine
	it.routine = nil
	if reason != EndCompleted {
		closeRoutine(r)
	}
	it.ctx = nil
	it.paused = false
	it.gen++
	it.owner.onRoutineEnded(reason)
}
