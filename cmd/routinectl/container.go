package main

import (
	"os"

	"github.com/Swind/go-routine-runner/core"
	promexporter "github.com/Swind/go-routine-runner/observability/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/samber/do"
)

// options are the global flags every command shares.
type options struct {
	configDir    string
	settingsName string
	verbose      bool
}

// tickLoop wraps core.TickLoop so the container stops it on Shutdown.
type tickLoop struct {
	*core.TickLoop
}

func (l tickLoop) Shutdown() error {
	l.Stop()
	return nil
}

// snapshotPoller wraps the Prometheus poller so the container stops it on Shutdown.
type snapshotPoller struct {
	*promexporter.SnapshotPoller
}

func (p snapshotPoller) Shutdown() error {
	p.Stop()
	return nil
}

// newContainer registers the services of one routinectl run.
// Everything is lazy: a command only builds what it invokes.
func newContainer(opts options) *do.Injector {
	injector := do.New()

	do.ProvideValue(injector, opts)

	do.Provide(injector, func(i *do.Injector) (core.Settings, error) {
		o := do.MustInvoke[options](i)
		return core.LoadSettings(os.DirFS(o.configDir), o.settingsName)
	})

	do.Provide(injector, func(i *do.Injector) (core.Logger, error) {
		o := do.MustInvoke[options](i)
		return &core.DefaultLogger{Prefix: "routinectl", Verbose: o.verbose}, nil
	})

	do.Provide(injector, func(i *do.Injector) (*prom.Registry, error) {
		return prom.NewRegistry(), nil
	})

	do.Provide(injector, func(i *do.Injector) (*promexporter.MetricsExporter, error) {
		reg := do.MustInvoke[*prom.Registry](i)
		return promexporter.NewMetricsExporter("routinerunner", reg, promexporter.ExporterOptions{})
	})

	do.Provide(injector, func(i *do.Injector) (*core.Scheduler, error) {
		settings, err := do.Invoke[core.Settings](i)
		if err != nil {
			return nil, err
		}
		exporter, err := do.Invoke[*promexporter.MetricsExporter](i)
		if err != nil {
			return nil, err
		}
		logger := do.MustInvoke[core.Logger](i)

		config := settings.SchedulerConfig("main")
		config.Logger = logger
		config.PanicHandler = &core.DefaultPanicHandler{Logger: logger}
		config.Metrics = exporter
		return core.NewScheduler(config), nil
	})

	do.Provide(injector, func(i *do.Injector) (tickLoop, error) {
		settings := do.MustInvoke[core.Settings](i)
		scheduler, err := do.Invoke[*core.Scheduler](i)
		if err != nil {
			return tickLoop{}, err
		}
		loop := core.NewTickLoop(scheduler, core.TickLoopConfig{Interval: settings.TickInterval()})
		return tickLoop{loop}, nil
	})

	do.Provide(injector, func(i *do.Injector) (snapshotPoller, error) {
		reg := do.MustInvoke[*prom.Registry](i)
		settings := do.MustInvoke[core.Settings](i)
		poller, err := promexporter.NewSnapshotPoller(reg, 10*settings.TickInterval())
		if err != nil {
			return snapshotPoller{}, err
		}
		poller.AddScheduler("main", do.MustInvoke[*core.Scheduler](i))
		return snapshotPoller{poller}, nil
	})

	return injector
}
