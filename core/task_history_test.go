package core

import "testing"

// TestExecutionHistory_Ring verifies the ring buffer keeps the newest records
// Given: A history of capacity 3
// When: Five records are added
// Then: Recent returns the last three newest first and Last the newest
func TestExecutionHistory_Ring(t *testing.T) {
	// Arrange
	h := newExecutionHistory(3)

	// Act
	for i := 1; i <= 5; i++ {
		h.Add(TaskExecutionRecord{TaskID: TaskID(i)})
	}

	// Assert
	recent := h.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("len = %d, want 3", len(recent))
	}
	for i, want := range []TaskID{5, 4, 3} {
		if recent[i].TaskID != want {
			t.Errorf("recent[%d] = %v, want %v", i, recent[i].TaskID, want)
		}
	}
	if got := h.Recent(1); len(got) != 1 || got[0].TaskID != 5 {
		t.Errorf("Recent(1) = %+v", got)
	}
	if last, ok := h.Last(); !ok || last.TaskID != 5 {
		t.Errorf("Last = %+v, %v", last, ok)
	}
}

func TestExecutionHistory_Empty(t *testing.T) {
	h := newExecutionHistory(0)
	if h.Recent(5) != nil {
		t.Error("Recent on empty history should be nil")
	}
	if _, ok := h.Last(); ok {
		t.Error("Last on empty history should report false")
	}
	if len(h.items) != defaultTaskHistoryCapacity {
		t.Errorf("capacity = %d, want default", len(h.items))
	}
}

func TestTaskExecutionRecord_Ticks(t *testing.T) {
	if got := (TaskExecutionRecord{StartedFrame: 3, EndedFrame: 7}).Ticks(); got != 4 {
		t.Errorf("Ticks = %d, want 4", got)
	}
	if got := (TaskExecutionRecord{StartedFrame: 7, EndedFrame: 3}).Ticks(); got != 0 {
		t.Errorf("Ticks = %d, want 0", got)
	}
}
