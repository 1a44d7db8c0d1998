package core

import "time"

const defaultTaskHistoryCapacity = 100

// executionHistory is a fixed size ring buffer of finished routine runs.
// Only the scheduling goroutine touches it.
type executionHistory struct {
	items []TaskExecutionRecord
	head  int
	count int
}

func newExecutionHistory(capacity int) executionHistory {
	if capacity < 1 {
		capacity = defaultTaskHistoryCapacity
	}
	return executionHistory{items: make([]TaskExecutionRecord, capacity)}
}

func (h *executionHistory) Add(record TaskExecutionRecord) {
	if len(h.items) == 0 {
		return
	}

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit records, newest first. limit <= 0 returns all of them.
func (h *executionHistory) Recent(limit int) []TaskExecutionRecord {
	if h.count == 0 {
		return nil
	}

	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]TaskExecutionRecord, 0, limit)
	for i := range limit {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

func (h *executionHistory) Last() (TaskExecutionRecord, bool) {
	if h.count == 0 {
		return TaskExecutionRecord{}, false
	}

	idx := (h.head - 1 + len(h.items)) % len(h.items)
	return h.items[idx], true
}

// runRecord tracks the routine currently held by a runner until it ends.
type runRecord struct {
	name         string
	startedFrame uint64
	startedAt    time.Time
}

func (r runRecord) finish(taskID TaskID, runner, scheduler string, frame uint64, at time.Time, reason EndReason) TaskExecutionRecord {
	return TaskExecutionRecord{
		TaskID:       taskID,
		Name:         r.name,
		Runner:       runner,
		Scheduler:    scheduler,
		StartedFrame: r.startedFrame,
		EndedFrame:   frame,
		StartedAt:    r.startedAt,
		FinishedAt:   at,
		Duration:     at.Sub(r.startedAt),
		Reason:       reason,
	}
}
