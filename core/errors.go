package core

import "errors"

var (
	// ErrNilStorage is returned when an ObjectPool is built without storage.
	ErrNilStorage = errors.New("pool storage cannot be nil")

	// ErrNilFactory is returned when an ObjectPool is built without a factory.
	ErrNilFactory = errors.New("pool factory cannot be nil")

	// ErrNilRoutine is returned when a nil Routine is handed to an iterator.
	ErrNilRoutine = errors.New("routine cannot be nil")

	// ErrIteratorFilled is returned by Fill when the iterator already holds a routine.
	// Queuing belongs to RoutineRunner, not to the iterator.
	ErrIteratorFilled = errors.New("routine iterator already holds a routine")

	// ErrStopNotAllowed is returned by Stop when the scheduler policy forbids stopping tasks.
	ErrStopNotAllowed = errors.New("tasks cannot be stopped with the current scheduler policy")

	// ErrGlobalStopDisabled is returned by RegisterStopper when global stopping is disabled.
	ErrGlobalStopDisabled = errors.New("tasks cannot be stopped globally with the current scheduler policy")

	// ErrStopperRegistered is returned by RegisterStopper when a stopper is already set.
	ErrStopperRegistered = errors.New("stopper is already registered")

	// ErrRunnerReleased is returned when work is handed to a runner that is back in its pool.
	ErrRunnerReleased = errors.New("runner has been released to its pool")

	// ErrNilStopper is returned by RegisterStopper when the stopper is nil.
	ErrNilStopper = errors.New("stopper cannot be nil")

	// ErrLoopClosed is returned by TickLoop operations after the loop stopped.
	ErrLoopClosed = errors.New("tick loop is closed")

	// ErrLoopNotStarted is returned when work that needs a running TickLoop
	// is handed to one that was never started.
	ErrLoopNotStarted = errors.New("tick loop has not been started")

	// ErrIDsExhausted is the panic value raised when an IDGenerator runs out of ids.
	ErrIDsExhausted = errors.New("task id generator exhausted")
)
