package core

import (
	"math"
	"strconv"
)

// TaskID identifies one logical task inside a Scheduler.
// NoTask is the released / "no task" sentinel.
type TaskID uint64

const NoTask TaskID = 0

// IsZero reports whether id is the NoTask sentinel.
func (id TaskID) IsZero() bool {
	return id == NoTask
}

func (id TaskID) String() string {
	if id.IsZero() {
		return "task-none"
	}
	return "task-" + strconv.FormatUint(uint64(id), 10)
}

// IDGenerator issues task ids. An id is never returned twice by the same generator.
type IDGenerator interface {
	NewID() TaskID
}

// SequentialIDGenerator hands out 1, 2, 3, ...
// It is not safe for concurrent use; it lives on the scheduling goroutine.
type SequentialIDGenerator struct {
	last TaskID
}

func NewSequentialIDGenerator() *SequentialIDGenerator {
	return &SequentialIDGenerator{}
}

// NewID returns the next id. It panics with ErrIDsExhausted instead of wrapping
// back to NoTask.
func (g *SequentialIDGenerator) NewID() TaskID {
	if g.last == math.MaxUint64 {
		panic(ErrIDsExhausted)
	}
	g.last++
	return g.last
}
