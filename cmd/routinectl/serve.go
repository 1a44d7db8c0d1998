package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/Swind/go-routine-runner/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run a continuous workload and expose Prometheus metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: ":9090",
				Usage: "Metrics listen address",
			},
			&cli.DurationFlag{
				Name:  "duration",
				Usage: "Stop after this long (0 runs until interrupted)",
			},
			&cli.IntFlag{
				Name:  "spawn-every",
				Value: 10,
				Usage: "Start a new routine every N ticks",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	every := c.Int("spawn-every")
	if every < 1 {
		return cli.Exit("spawn-every must be at least 1", 1)
	}

	injector := newContainer(optionsFrom(c))
	defer injector.Shutdown()

	loop, err := do.Invoke[tickLoop](injector)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to build scheduler: %v", err), 1)
	}
	poller, err := do.Invoke[snapshotPoller](injector)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to build snapshot poller: %v", err), 1)
	}
	reg := do.MustInvoke[*prom.Registry](injector)
	logger := do.MustInvoke[core.Logger](injector)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if d := c.Duration("duration"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	server := &http.Server{Addr: c.String("addr"), Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	logger.Info("serving metrics", core.F("addr", server.Addr))

	loop.Start(ctx)
	poller.Start(ctx)
	loop.Post(func(s *core.Scheduler) {
		s.RunAsync(ctx, core.Named("spawner", spawner(every)))
	})

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return cli.Exit(fmt.Sprintf("Metrics server failed: %v", err), 1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown", core.F("error", err))
	}
	return nil
}

// spawner starts a short routine every n ticks: most finish on their own,
// some are skipped, paused or stopped, so every metric moves.
func spawner(n int) core.Routine {
	var live []core.TaskInfo
	return core.RoutineFunc(func(ctx context.Context) core.Status {
		s := core.CurrentScheduler(ctx)
		if s.Frame()%uint64(n) != 0 {
			return core.Suspend
		}

		live = slices.DeleteFunc(live, func(h core.TaskInfo) bool { return !h.IsAlive() })
		switch rand.IntN(4) {
		case 0:
			if len(live) > 0 {
				_ = live[0].Stop()
			}
		case 1:
			if len(live) > 0 {
				live[len(live)-1].Pause()
			}
		case 2:
			for _, h := range live {
				h.Resume()
			}
		}

		h := s.RunAsync(ctx, core.Named("work", core.WaitTicks(rand.IntN(5*n))))
		live = append(live, h)
		return core.Suspend
	})
}
