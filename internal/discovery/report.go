package discovery

import (
	"sfpurge/internal/domain"
	"sfpurge/internal/ui"
)

// Analyzer renders the restart-source report: every mechanism that could
// resurrect a killed process. Pure presentation over the inventory; it never
// fails and never touches system state.
type Analyzer struct {
	console *ui.Console
}

// NewAnalyzer creates a restart-source analyzer.
func NewAnalyzer(console *ui.Console) *Analyzer {
	return &Analyzer{console: console}
}

// Report enumerates the discovered restart vectors for the operator.
func (a *Analyzer) Report(inv *domain.Inventory) {
	a.console.Rule()
	a.console.Headerf("[*] restart source analysis")
	a.console.Rule()

	if services := inv.ServiceNames(); len(services) > 0 {
		a.console.Warnf("%d services (restart their processes automatically):", len(services))
		for _, name := range services {
			a.console.Plainf("     - %s", inv.Services[name].Name)
		}
	}

	if watchdogs := inv.Watchdogs(); len(watchdogs) > 0 {
		a.console.Warnf("%d watchdog processes (supervise and respawn others):", len(watchdogs))
		for _, w := range watchdogs {
			a.console.Plainf("     - %s", w.Name)
		}
	}

	if tasks := inv.TaskNames(); len(tasks) > 0 {
		a.console.Warnf("%d scheduled tasks (relaunch on a timer):", len(tasks))
		for _, name := range tasks {
			a.console.Plainf("     - %s", inv.Tasks[name].Name)
		}
	}

	if drivers := inv.DriverNames(); len(drivers) > 0 {
		a.console.Warnf("%d kernel drivers:", len(drivers))
		for _, name := range drivers {
			a.console.Plainf("     - %s", inv.Drivers[name].Name)
		}
	}

	if !inv.HasSuppressibleTargets() && len(inv.Watchdogs()) == 0 {
		a.console.Infof("no restart sources detected")
		return
	}

	a.console.Infof("plan: disable restart sources first, kill watchdogs before")
	a.console.Infof("ordinary processes, then keep monitoring for respawns")
}
