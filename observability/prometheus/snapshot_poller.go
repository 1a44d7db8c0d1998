package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-routine-runner/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// SchedulerSnapshotProvider provides scheduler stats snapshots.
// Snapshot is called from the poller goroutine and must be safe for that;
// core.Scheduler.Snapshot is.
type SchedulerSnapshotProvider interface {
	Snapshot() core.SchedulerStats
}

// SnapshotPoller periodically exports scheduler Snapshot() values into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	schedulersMu sync.RWMutex
	schedulers   map[string]SchedulerSnapshotProvider

	frame   *prom.GaugeVec
	active  *prom.GaugeVec
	idle    *prom.GaugeVec
	pending *prom.GaugeVec
	paused  *prom.GaugeVec
	created *prom.GaugeVec
	stopped *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	gauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "routinerunner",
			Subsystem: "scheduler",
			Name:      name,
			Help:      help,
		}, []string{"scheduler"})
	}

	p := &SnapshotPoller{
		interval:   interval,
		schedulers: make(map[string]SchedulerSnapshotProvider),
		frame:      gauge("frame", "Last tick frame number."),
		active:     gauge("active_runners", "Runners holding a task."),
		idle:       gauge("idle_runners", "Pooled runners ready for reuse."),
		pending:    gauge("pending_routines", "Routines queued behind in-flight ones."),
		paused:     gauge("paused_runners", "Runners whose routine is paused."),
		created:    gauge("created_runners", "Runners created since the scheduler started."),
		stopped:    gauge("stopped", "Scheduler shutdown state (1=shut down, 0=running)."),
	}

	for _, vec := range []**prom.GaugeVec{&p.frame, &p.active, &p.idle, &p.pending, &p.paused, &p.created, &p.stopped} {
		registered, err := registerCollector(reg, *vec)
		if err != nil {
			return nil, err
		}
		*vec = registered
	}

	return p, nil
}

// AddScheduler adds or replaces a scheduler snapshot provider by name.
func (p *SnapshotPoller) AddScheduler(name string, provider SchedulerSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "scheduler")
	p.schedulersMu.Lock()
	p.schedulers[name] = provider
	p.schedulersMu.Unlock()
}

// RemoveScheduler stops exporting name and drops its series.
func (p *SnapshotPoller) RemoveScheduler(name string) {
	if p == nil {
		return
	}
	name = normalizeLabel(name, "scheduler")
	p.schedulersMu.Lock()
	delete(p.schedulers, name)
	p.schedulersMu.Unlock()

	for _, vec := range []*prom.GaugeVec{p.frame, p.active, p.idle, p.pending, p.paused, p.created, p.stopped} {
		vec.DeleteLabelValues(name)
	}
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.schedulersMu.RLock()
	defer p.schedulersMu.RUnlock()

	for name, provider := range p.schedulers {
		stats := provider.Snapshot()
		p.frame.WithLabelValues(name).Set(float64(stats.Frame))
		p.active.WithLabelValues(name).Set(float64(stats.Active))
		p.idle.WithLabelValues(name).Set(float64(stats.Idle))
		p.pending.WithLabelValues(name).Set(float64(stats.Pending))
		p.paused.WithLabelValues(name).Set(float64(stats.Paused))
		p.created.WithLabelValues(name).Set(float64(stats.Created))
		if stats.Stopped {
			p.stopped.WithLabelValues(name).Set(1)
		} else {
			p.stopped.WithLabelValues(name).Set(0)
		}
	}
}
