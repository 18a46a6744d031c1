// Package daemon implements the convergence loop that drives live system
// state toward "no target processes running".
package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sfpurge/internal/domain"
	"sfpurge/internal/policy"
	"sfpurge/internal/ui"
)

// Phase is the monitor's lifecycle state.
type Phase string

const (
	PhaseDiscovering Phase = "discovering"
	PhaseSuppressing Phase = "suppressing"
	PhaseMonitoring  Phase = "monitoring"
	PhaseStopped     Phase = "stopped"
)

// Discoverer builds the static target inventory once.
type Discoverer interface {
	Discover(ctx context.Context) *domain.Inventory
}

// Suppressor cuts restart paths and re-stops services on monitoring passes.
type Suppressor interface {
	Suppress(ctx context.Context, inv *domain.Inventory)
	StopServices(ctx context.Context, inv *domain.Inventory, quiet bool) int
}

// Terminator runs one kill pass over a fresh process snapshot.
type Terminator interface {
	Kill(ctx context.Context, inv *domain.Inventory) int
}

// Monitor owns the Discovering -> Suppressing -> Monitoring -> Stopped state
// machine. The monitoring loop has no automatic exit: it runs until the
// context is canceled, checking for cancellation only at pass boundaries so
// an interrupt never tears down a half-finished pass.
type Monitor struct {
	target     policy.Target
	discoverer Discoverer
	suppressor Suppressor
	terminator Terminator
	console    *ui.Console
	logger     *zap.Logger
	stats      *domain.Stats
	phase      Phase
}

// NewMonitor creates a monitor.
func NewMonitor(target policy.Target, d Discoverer, s Suppressor, t Terminator, console *ui.Console, logger *zap.Logger, stats *domain.Stats) *Monitor {
	return &Monitor{
		target:     target,
		discoverer: d,
		suppressor: s,
		terminator: t,
		console:    console,
		logger:     logger,
		stats:      stats,
		phase:      PhaseDiscovering,
	}
}

// Phase returns the current lifecycle state.
func (m *Monitor) Phase() Phase { return m.phase }

// Run executes the full pipeline and blocks in the monitoring loop until ctx
// is canceled. Cancellation before discovery completes is an abnormal exit
// and returns the context error; afterwards it is the normal way to stop and
// returns nil. The closing summary renders exactly once on the transition to
// Stopped, whichever path leads there.
func (m *Monitor) Run(ctx context.Context) error {
	defer m.summarize()

	m.setPhase(PhaseDiscovering)
	inv := m.discoverer.Discover(ctx)
	if err := ctx.Err(); err != nil {
		m.setPhase(PhaseStopped)
		return err
	}
	if len(inv.Directories) == 0 {
		m.console.Warnf("[*] no target directories found, nothing to do")
		m.logger.Info("no target directories found")
		m.setPhase(PhaseStopped)
		return nil
	}

	m.setPhase(PhaseSuppressing)
	if inv.HasSuppressibleTargets() {
		m.suppressor.Suppress(ctx, inv)
	}

	m.setPhase(PhaseMonitoring)
	m.console.Rule()
	m.console.Headerf("[*] monitoring started (interval %s, Ctrl+C to stop)", m.target.MonitorInterval)
	m.console.Rule()

	ticker := time.NewTicker(m.target.MonitorInterval)
	defer ticker.Stop()

	for iteration := 1; ; iteration++ {
		m.pass(ctx, inv, iteration)

		select {
		case <-ctx.Done():
			m.console.Warnf("\n[!] stop requested, monitoring ends")
			m.logger.Info("monitoring stopped", zap.Int("iterations", iteration))
			m.setPhase(PhaseStopped)
			return nil
		case <-ticker.C:
		}
	}
}

// pass is one monitoring iteration: a termination pass, then a service
// re-stop pass. A disabled service can still be running from before
// suppression or get restarted by something outside our visibility, so the
// re-stop check runs every time. Failures inside a pass never end the loop.
func (m *Monitor) pass(ctx context.Context, inv *domain.Inventory, iteration int) {
	m.console.Infof("--- pass %d (%s) ---", iteration, time.Now().Format("15:04:05"))

	if len(inv.Executables) > 0 {
		m.terminator.Kill(ctx, inv)
	}
	if len(inv.Services) > 0 {
		m.suppressor.StopServices(ctx, inv, true)
	}
}

func (m *Monitor) setPhase(p Phase) {
	m.phase = p
	m.logger.Debug("phase transition", zap.String("phase", string(p)))
}

// summarize renders the closing totals regardless of how the run ended.
func (m *Monitor) summarize() {
	m.console.Rule()
	m.console.Headerf("[*] run summary")
	m.console.Rule()
	m.console.Successf("processes killed:  %d", m.stats.ProcessesKilled)
	m.console.Successf("services stopped:  %d", m.stats.ServicesStopped)
	if m.stats.ServicesDisabled > 0 {
		m.console.Successf("services disabled: %d", m.stats.ServicesDisabled)
	}
	if m.stats.DriversDisabled > 0 {
		m.console.Successf("drivers disabled:  %d", m.stats.DriversDisabled)
	}
	if m.stats.TasksDisabled > 0 {
		m.console.Successf("tasks disabled:    %d", m.stats.TasksDisabled)
	}
	m.logger.Info("run finished",
		zap.Int("processes_killed", m.stats.ProcessesKilled),
		zap.Int("services_stopped", m.stats.ServicesStopped),
		zap.Int("services_disabled", m.stats.ServicesDisabled),
		zap.Int("drivers_disabled", m.stats.DriversDisabled),
		zap.Int("tasks_disabled", m.stats.TasksDisabled))
}
