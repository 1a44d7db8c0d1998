package main

import (
	"context"
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/Swind/go-routine-runner/core"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
)

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Run a short scripted scenario and print the execution history",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 10 * time.Second,
				Usage: "Give up when the scenario has not finished by then",
			},
		},
		Action: demoAction,
	}
}

func demoAction(c *cli.Context) error {
	injector := newContainer(optionsFrom(c))
	defer injector.Shutdown()

	loop, err := do.Invoke[tickLoop](injector)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to build scheduler: %v", err), 1)
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	loop.Start(ctx)
	if !loop.Post(startDemo) {
		return cli.Exit("Failed to post the demo scenario", 1)
	}
	if err := loop.WaitIdle(ctx); err != nil {
		return cli.Exit(fmt.Sprintf("Demo did not finish: %v", err), 1)
	}

	records := make(chan []core.TaskExecutionRecord, 1)
	loop.Post(func(s *core.Scheduler) {
		records <- s.RecentTasks(0)
	})

	select {
	case history := <-records:
		return printHistory(c, history)
	case <-ctx.Done():
		return cli.Exit("Demo did not finish: history unavailable", 1)
	}
}

// startDemo queues the scenario: a chained continuation, a task paused for
// five ticks, a task stopped by another and a delayed one.
func startDemo(s *core.Scheduler) {
	ctx := context.Background()

	load := s.RunAsync(ctx, core.Named("load-assets", core.WaitTicks(2)))
	load.ContinueWith(core.Named("spawn-player", core.WaitTicks(0)))

	countdown := s.RunAsync(ctx, core.Named("countdown", core.WaitTicks(3)))
	countdown.Pause()
	s.RunAsync(ctx, core.Named("resume-countdown", core.AfterTicks(5, countdown.Resume)))

	patrol := s.RunAsync(ctx, core.Named("patrol", core.While(func() bool { return true }, func() {})))
	s.RunAsync(ctx, core.Named("stop-patrol", core.AfterTicks(3, func() {
		_ = patrol.Stop()
	})))

	s.RunAsync(ctx, core.Named("fade-in", core.Delay(50*time.Millisecond, nil)))
}

func printHistory(c *cli.Context, history []core.TaskExecutionRecord) error {
	slices.Reverse(history)

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROUTINE\tTASK\tRUNNER\tREASON\tTICKS")
	for _, rec := range history {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", rec.Name, rec.TaskID, rec.Runner, rec.Reason, rec.Ticks())
	}
	return w.Flush()
}
