// Package routinerunner provides single-threaded cooperative routine
// scheduling for Go, in the style of frame-driven game loops.
//
// Work is expressed as routines: resumable computations that run one step per
// tick and report whether they want to continue. A Scheduler owns a pool of
// runners, hands out task handles and advances every active routine on each
// Tick. Nothing is global: callers hold a Scheduler (or a Host) and pass it
// around explicitly.
//
// # Quick Start
//
// Drive a scheduler from your own frame loop:
//
//	s := routinerunner.NewScheduler(nil)
//	h := s.RunAsync(ctx, routinerunner.Steps(
//		func(ctx context.Context) { fmt.Println("frame 1") },
//		func(ctx context.Context) { fmt.Println("frame 2") },
//	))
//	for h.IsAlive() {
//		s.Tick()
//	}
//
// Or let a Host tick it from a dedicated goroutine:
//
//	host := routinerunner.NewHost("main", routinerunner.DefaultSettings())
//	host.Start(ctx)
//	defer host.Stop()
//	h, err := host.RunAsync(ctx, routinerunner.WaitTicks(10))
//
// # Key Concepts
//
// Routine: a resumable unit of work. Step returns Suspend to be resumed on the
// next tick or Done to finish.
//
// TaskInfo: a handle to a task. Handles never keep runners alive; once a task
// finishes, every method on its handle is a safe no-op, even if the runner
// was reused for another task.
//
// Continuations: TaskInfo.ContinueWith queues a routine on the same runner,
// so the handle stays alive until the whole chain completes.
//
// Policy: whether tasks can be stopped, stopped globally through a Stopper,
// and whether idle runners survive NotifyUnload. Settings are read from
// async_settings.toml with LoadSettings.
//
// # Thread Safety
//
// A Scheduler is driven by one goroutine. TaskInfo.IsAlive and
// Scheduler.Snapshot may be called from anywhere; everything else goes through
// the goroutine that ticks, for instance with Host.Post.
package routinerunner
