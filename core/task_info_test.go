package core

import (
	"context"
	"errors"
	"testing"
)

// counter returns a routine that bumps *n on every step and ends after steps steps.
func counter(n *int, steps int) Routine {
	return RoutineFunc(func(ctx context.Context) Status {
		*n++
		if *n >= steps {
			return Done
		}
		return Suspend
	})
}

// TestTaskInfo_Lifecycle verifies a handle is alive until its routine completes
// Given: A task that takes three steps
// When: The scheduler ticks
// Then: The handle is alive right after RunAsync and turns non-alive on the third tick, for good
func TestTaskInfo_Lifecycle(t *testing.T) {
	// Arrange
	s, _ := newTestScheduler(t, nil)
	steps := 0

	// Act
	h := s.RunAsync(context.Background(), counter(&steps, 3))

	// Assert
	if !h.IsAlive() {
		t.Fatal("handle should be alive right after RunAsync")
	}
	for i := 1; i <= 2; i++ {
		s.Tick()
		if !h.IsAlive() {
			t.Fatalf("handle died after tick %d", i)
		}
	}
	s.Tick()
	if h.IsAlive() {
		t.Error("handle should be dead after the routine completed")
	}
	tickN(s, 3)
	if h.IsAlive() {
		t.Error("dead handle came back to life")
	}
}

// TestTaskInfo_StaleStopDoesNotAffectReusedRunner verifies stale handles are isolated
// Given: Task A finished and its runner was reused by task B
// When: A's handle is stopped
// Then: B keeps running on the same runner
func TestTaskInfo_StaleStopDoesNotAffectReusedRunner(t *testing.T) {
	// Arrange
	s, _ := newTestScheduler(t, nil)
	a := s.RunAsync(context.Background(), WaitTicks(0))
	s.Tick()
	if a.IsAlive() {
		t.Fatal("task A should be done")
	}

	steps := 0
	b := s.RunAsync(context.Background(), counter(&steps, 5))
	if b.runner != a.runner {
		t.Fatal("expected task B to reuse task A's runner")
	}

	// Act
	err := a.Stop()
	a.Pause()

	// Assert
	if err != nil {
		t.Errorf("Stop on dead handle = %v, want nil", err)
	}
	if !b.IsAlive() || b.IsPaused() {
		t.Error("stale handle affected the new task")
	}
	if a == b {
		t.Error("handles of different tasks compare equal")
	}
	tickN(s, 5)
	if steps != 5 {
		t.Errorf("task B steps = %d, want 5", steps)
	}
}

// TestTaskInfo_ContinueWithOnDeadHandle verifies a new independent task starts
func TestTaskInfo_ContinueWithOnDeadHandle(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	a := s.RunAsync(context.Background(), WaitTicks(0))
	s.Tick()

	ran := false
	c := a.ContinueWith(Steps(func(context.Context) { ran = true }))

	if !c.IsAlive() {
		t.Fatal("continuation should be alive")
	}
	if c.TaskID() == a.TaskID() {
		t.Error("continuation reused the dead task's id")
	}
	if a.IsAlive() {
		t.Error("dead handle revived by ContinueWith")
	}
	s.Tick()
	if !ran || c.IsAlive() {
		t.Errorf("ran = %v, alive = %v; want true, false", ran, c.IsAlive())
	}
}

// TestTaskInfo_ContinueWithChainsOnSameRunner verifies the A-then-B scenario
// Given: GetRunner, RunAsync(A) captured as h1, then h1.ContinueWith(B) before A finishes
// When: The scheduler ticks
// Then: B starts only after A's final step, on the same runner, and h1 stays alive until B completes
func TestTaskInfo_ContinueWithChainsOnSameRunner(t *testing.T) {
	// Arrange
	s, _ := newTestScheduler(t, nil)
	var trace []string
	a := Steps(
		func(ctx context.Context) { trace = append(trace, "A1") },
		func(ctx context.Context) { trace = append(trace, "A2") },
	)
	var bTask TaskInfo
	b := Steps(
		func(ctx context.Context) { trace = append(trace, "B1"); bTask = CurrentTask(ctx) },
		func(ctx context.Context) { trace = append(trace, "B2") },
	)

	runner := s.GetRunner()
	h1, err := runner.RunAsync(context.Background(), a)
	if err != nil {
		t.Fatalf("RunAsync: %v", err)
	}

	// Act
	h2 := h1.ContinueWith(b)

	// Assert
	if h2 != h1 {
		t.Error("ContinueWith on a live handle should return the same handle")
	}
	want := []string{"A1", "A2", "B1", "B2"}
	for i := range want {
		if !h1.IsAlive() {
			t.Fatalf("h1 died before step %d", i)
		}
		s.Tick()
	}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("trace[%d] = %s, want %s", i, trace[i], want[i])
		}
	}
	if bTask != h1 {
		t.Errorf("B ran as %v, want %v", bTask, h1)
	}
	if h1.IsAlive() {
		t.Error("h1 should be dead once B completed")
	}
}

// TestTaskInfo_PauseResume verifies the pause-for-5-ticks scenario
// Given: A running task counting its steps
// When: It is paused for 5 ticks and then resumed
// Then: No step runs while paused and the count continues where it stopped
func TestTaskInfo_PauseResume(t *testing.T) {
	// Arrange
	s, _ := newTestScheduler(t, nil)
	steps := 0
	h := s.RunAsync(context.Background(), counter(&steps, 100))
	tickN(s, 2)

	// Act
	h.Pause()
	tickN(s, 5)
	paused := steps
	h.Resume()
	s.Tick()

	// Assert
	if paused != 2 {
		t.Errorf("steps while paused = %d, want 2", paused)
	}
	if steps != 3 {
		t.Errorf("steps after resume = %d, want 3", steps)
	}
	if h.IsPaused() {
		t.Error("handle still paused after Resume")
	}
}

// TestTaskInfo_StopIdempotent verifies a second Stop is a no-op
func TestTaskInfo_StopIdempotent(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	metrics := NewTestMetrics()
	s.metrics = metrics
	h := s.RunAsync(context.Background(), WaitTicks(10))
	idle := s.IdleCount()

	if err := h.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := h.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	if h.IsAlive() {
		t.Error("handle alive after Stop")
	}
	if got := metrics.Ended(EndStopped); got != 1 {
		t.Errorf("stopped count = %d, want 1", got)
	}
	if s.IdleCount() != idle+1 {
		t.Errorf("IdleCount = %d, want %d", s.IdleCount(), idle+1)
	}
}

// TestTaskInfo_StopRefusedByPolicy verifies CanBeStopped=false
func TestTaskInfo_StopRefusedByPolicy(t *testing.T) {
	s, _ := newTestScheduler(t, func(c *SchedulerConfig) {
		c.Policy.CanBeStopped = false
	})
	h := s.RunAsync(context.Background(), WaitTicks(10))

	if err := h.Stop(); !errors.Is(err, ErrStopNotAllowed) {
		t.Errorf("Stop = %v, want ErrStopNotAllowed", err)
	}
	if !h.IsAlive() {
		t.Error("refused Stop killed the task")
	}
}

// TestTaskInfo_Zero verifies the zero handle is inert
func TestTaskInfo_Zero(t *testing.T) {
	var h TaskInfo
	h.Pause()
	h.Resume()
	if h.IsAlive() || h.IsPaused() {
		t.Error("zero handle reports alive or paused")
	}
	if err := h.Stop(); err != nil {
		t.Errorf("Stop = %v, want nil", err)
	}
	if h != (TaskInfo{}) {
		t.Error("zero handles should compare equal")
	}
	if h.String() != "task-none" {
		t.Errorf("String = %q", h.String())
	}
	if h.ContinueWith(nil) != h {
		t.Error("ContinueWith(nil) should return the handle unchanged")
	}
}

// TestTaskInfo_Wait verifies one task can wait for another
func TestTaskInfo_Wait(t *testing.T) {
	s, _ := newTestScheduler(t, nil)
	slow := s.RunAsync(context.Background(), WaitTicks(3))

	done := false
	waiter := s.RunAsync(context.Background(), slow.Wait())
	waiter.ContinueWith(Steps(func(context.Context) { done = true }))

	tickN(s, 3)
	if done {
		t.Fatal("waiter finished before the slow task")
	}
	tickN(s, 3)
	if !done {
		t.Error("waiter never finished")
	}
}
