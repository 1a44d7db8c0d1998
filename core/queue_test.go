package core

import (
	"context"
	"testing"
)

// closingRoutine records whether it was closed before finishing
type closingRoutine struct {
	closed bool
}

func (r *closingRoutine) Step(ctx context.Context) Status { return Suspend }

func (r *closingRoutine) Close() error {
	r.closed = true
	return nil
}

// TestFIFO_Order verifies basic FIFO ordering
// Given: A fifo with three items
// When: Items are popped
// Then: They come out in push order and the queue ends empty
func TestFIFO_Order(t *testing.T) {
	// Arrange
	q := newFIFO[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	// Act & Assert
	if v, ok := q.Peek(); !ok || v != 1 {
		t.Fatalf("Peek = %d, %v; want 1, true", v, ok)
	}
	for _, want := range []int{1, 2, 3} {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Errorf("Pop = %d, %v; want %d, true", got, ok, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop on empty queue should report false")
	}
	if !q.IsEmpty() {
		t.Error("queue should be empty")
	}
}

// TestFIFO_PopLast verifies LIFO removal used by StackStorage
func TestFIFO_PopLast(t *testing.T) {
	q := newFIFO[string]()
	q.Push("a")
	q.Push("b")

	if v, _ := q.PopLast(); v != "b" {
		t.Errorf("PopLast = %q, want b", v)
	}
	if v, _ := q.PopLast(); v != "a" {
		t.Errorf("PopLast = %q, want a", v)
	}
	if _, ok := q.PopLast(); ok {
		t.Error("PopLast on empty queue should report false")
	}
}

// TestFIFO_Compaction verifies the backing array shrinks after draining
// Given: A fifo grown well past compactMinCap
// When: Most items are popped
// Then: Capacity shrinks and the remaining items keep their order
func TestFIFO_Compaction(t *testing.T) {
	// Arrange
	q := newFIFO[int]()
	for i := range 1000 {
		q.Push(i)
	}
	grown := cap(q.items)

	// Act
	for range 990 {
		q.Pop()
	}

	// Assert
	if cap(q.items) >= grown {
		t.Errorf("cap = %d, want less than %d after draining", cap(q.items), grown)
	}
	for want := 990; want < 1000; want++ {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Fatalf("Pop = %d, %v; want %d", got, ok, want)
		}
	}
}

// TestRoutineQueue_ClearClosesRoutines verifies Clear releases pending routines
// Given: A RoutineQueue holding a closable routine
// When: Clear is called
// Then: The routine is closed and the queue is empty
func TestRoutineQueue_ClearClosesRoutines(t *testing.T) {
	// Arrange
	q := NewRoutineQueue()
	r := &closingRoutine{}
	q.Push(context.Background(), r)
	q.Push(context.Background(), WaitTicks(1))

	// Act
	q.Clear()

	// Assert
	if !r.closed {
		t.Error("pending routine was not closed")
	}
	if q.Len() != 0 || !q.IsEmpty() {
		t.Errorf("Len = %d, want 0", q.Len())
	}
}
