package core

import (
	"context"
	"errors"
	"testing"
)

// recordingOwner collects end reasons reported by an iterator
type recordingOwner struct {
	reasons []EndReason
}

func (o *recordingOwner) onRoutineEnded(reason EndReason) {
	o.reasons = append(o.reasons, reason)
}

// TestRoutineIterator_FillTwice verifies a filled iterator refuses a second routine
// Given: An iterator holding a routine
// When: Fill is called again
// Then: ErrIteratorFilled is returned and the first routine is kept
func TestRoutineIterator_FillTwice(t *testing.T) {
	// Arrange
	it := NewRoutineIterator(&recordingOwner{})
	if err := it.Fill(context.Background(), WaitTicks(3)); err != nil {
		t.Fatalf("first Fill: %v", err)
	}

	// Act
	err := it.Fill(context.Background(), WaitTicks(1))

	// Assert
	if !errors.Is(err, ErrIteratorFilled) {
		t.Errorf("err = %v, want ErrIteratorFilled", err)
	}
	if it.IsEmpty() {
		t.Error("iterator lost its routine")
	}
	if err := it.Fill(context.Background(), nil); !errors.Is(err, ErrNilRoutine) {
		t.Errorf("nil routine: err = %v, want ErrNilRoutine", err)
	}
}

// TestRoutineIterator_RunsToCompletion verifies the owner hears about completion once
// Given: An iterator filled with a routine that suspends twice
// When: MoveNext is called until it reports false
// Then: It took three calls and the owner saw one EndCompleted
func TestRoutineIterator_RunsToCompletion(t *testing.T) {
	// Arrange
	owner := &recordingOwner{}
	it := NewRoutineIterator(owner)
	_ = it.Fill(context.Background(), WaitTicks(2))

	// Act
	calls := 1
	for it.MoveNext() {
		calls++
	}

	// Assert
	if calls != 3 {
		t.Errorf("MoveNext calls = %d, want 3", calls)
	}
	if len(owner.reasons) != 1 || owner.reasons[0] != EndCompleted {
		t.Errorf("reasons = %v, want [completed]", owner.reasons)
	}
	if !it.IsEmpty() {
		t.Error("iterator should be empty after completion")
	}
	if it.MoveNext() {
		t.Error("MoveNext on an empty iterator should report false")
	}
}

// TestRoutineIterator_Pause verifies a paused iterator does not step
func TestRoutineIterator_Pause(t *testing.T) {
	steps := 0
	it := NewRoutineIterator(&recordingOwner{})
	_ = it.Fill(context.Background(), RoutineFunc(func(ctx context.Context) Status {
		steps++
		return Suspend
	}))

	it.Pause(true)
	for range 3 {
		if !it.MoveNext() {
			t.Fatal("paused iterator reported finished")
		}
	}
	if steps != 0 {
		t.Errorf("steps while paused = %d, want 0", steps)
	}

	it.Pause(false)
	it.MoveNext()
	if steps != 1 {
		t.Errorf("steps after resume = %d, want 1", steps)
	}
}

// TestRoutineIterator_Canceled verifies a cancelled context ends even a paused routine
// Given: A paused iterator over a closable routine
// When: Its context is cancelled and MoveNext is called
// Then: The routine is closed and the owner sees EndCanceled
func TestRoutineIterator_Canceled(t *testing.T) {
	// Arrange
	owner := &recordingOwner{}
	it := NewRoutineIterator(owner)
	r := &closingRoutine{}
	ctx, cancel := context.WithCancel(context.Background())
	_ = it.Fill(ctx, r)
	it.Pause(true)

	// Act
	cancel()
	alive := it.MoveNext()

	// Assert
	if alive {
		t.Error("MoveNext should report false after cancellation")
	}
	if !r.closed {
		t.Error("cancelled routine was not closed")
	}
	if len(owner.reasons) != 1 || owner.reasons[0] != EndCanceled {
		t.Errorf("reasons = %v, want [canceled]", owner.reasons)
	}
	if it.IsPaused() {
		t.Error("pause flag should be cleared")
	}
}

// TestRoutineIterator_Reset verifies Reset discards without notifying the owner
func TestRoutineIterator_Reset(t *testing.T) {
	owner := &recordingOwner{}
	it := NewRoutineIterator(owner)
	r := &closingRoutine{}
	_ = it.Fill(context.Background(), r)
	it.Pause(true)

	it.Reset()

	if !it.IsEmpty() || it.IsPaused() {
		t.Error("Reset should leave an empty, unpaused iterator")
	}
	if !r.closed {
		t.Error("Reset did not close the routine")
	}
	if len(owner.reasons) != 0 {
		t.Errorf("owner notified on Reset: %v", owner.reasons)
	}
	if err := it.Fill(context.Background(), WaitTicks(0)); err != nil {
		t.Errorf("Fill after Reset: %v", err)
	}
}
