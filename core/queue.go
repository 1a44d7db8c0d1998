package core

import "context"

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// fifo is a slice backed FIFO queue that shrinks its backing array once it
// has drained far enough. It is not synchronized: every queue in this
// package is owned by the scheduling goroutine.
type fifo[T any] struct {
	items []T
}

func newFIFO[T any]() fifo[T] {
	return fifo[T]{items: make([]T, 0, defaultQueueCap)}
}

func (q *fifo[T]) Push(v T) {
	q.items = append(q.items, v)
}

func (q *fifo[T]) Pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	item := q.items[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.items[0] = zero
	q.items = q.items[1:]
	q.maybeCompact()

	return item, true
}

// PopLast removes the most recently pushed item.
func (q *fifo[T]) PopLast() (T, bool) {
	var zero T
	n := len(q.items)
	if n == 0 {
		return zero, false
	}

	item := q.items[n-1]
	q.items[n-1] = zero
	q.items = q.items[:n-1]
	q.maybeCompact()

	return item, true
}

func (q *fifo[T]) Peek() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

func (q *fifo[T]) Len() int {
	return len(q.items)
}

func (q *fifo[T]) IsEmpty() bool {
	return len(q.items) == 0
}

// Clear drops every item and releases the references held by the backing array.
func (q *fifo[T]) Clear() {
	q.items = make([]T, 0, defaultQueueCap)
}

func (q *fifo[T]) maybeCompact() {
	n := len(q.items)
	c := cap(q.items)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.items = make([]T, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]T, n, newCap)
	copy(newSlice, q.items)
	q.items = newSlice
}

// =============================================================================
// RoutineQueue: pending routines of one RoutineRunner
// =============================================================================

// RoutineItem is a routine waiting for its turn on a runner.
type RoutineItem struct {
	Ctx     context.Context
	Routine Routine
}

// RoutineQueue keeps pending routines in insertion order.
type RoutineQueue struct {
	q fifo[RoutineItem]
}

func NewRoutineQueue() *RoutineQueue {
	return &RoutineQueue{q: newFIFO[RoutineItem]()}
}

func (q *RoutineQueue) Push(ctx context.Context, r Routine) {
	q.q.Push(RoutineItem{Ctx: ctx, Routine: r})
}

func (q *RoutineQueue) Pop() (RoutineItem, bool) { return q.q.Pop() }
func (q *RoutineQueue) Len() int                 { return q.q.Len() }
func (q *RoutineQueue) IsEmpty() bool            { return q.q.IsEmpty() }

// Clear removes all pending routines, closing the ones that hold resources.
func (q *RoutineQueue) Clear() {
	for _, item := range q.q.items {
		closeRoutine(item.Routine)
	}
	q.q.Clear()
}
