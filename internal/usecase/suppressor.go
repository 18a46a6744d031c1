// Package usecase contains application business logic: cutting restart paths
// and terminating target processes.
package usecase

import (
	"context"

	"go.uber.org/zap"

	"sfpurge/internal/domain"
	"sfpurge/internal/ui"
)

// Suppressor disables every discovered restart vector before the first kill:
// drivers, then services, then scheduled tasks. Drivers and services go first
// because a live watchdog service can respawn a killed process faster than
// the loop reacts; tasks are time-triggered and can wait.
type Suppressor struct {
	sc      domain.ServiceController
	ts      domain.TaskScheduler
	console *ui.Console
	logger  *zap.Logger
	stats   *domain.Stats
}

// NewSuppressor creates a suppressor.
func NewSuppressor(sc domain.ServiceController, ts domain.TaskScheduler, console *ui.Console, logger *zap.Logger, stats *domain.Stats) *Suppressor {
	return &Suppressor{sc: sc, ts: ts, console: console, logger: logger, stats: stats}
}

// Suppress runs the three sub-operations in order. Every per-target failure
// is logged and contained; no failure aborts the batch.
func (s *Suppressor) Suppress(ctx context.Context, inv *domain.Inventory) {
	if len(inv.Drivers) > 0 {
		s.disableDrivers(ctx, inv)
	}
	if len(inv.Services) > 0 {
		s.stopAndDisableServices(ctx, inv)
	}
	if len(inv.Tasks) > 0 {
		s.disableTasks(ctx, inv)
	}
}

// disableDrivers stops each driver and sets its start mode to disabled. The
// stop is issued unconditionally; a driver that was not loaded simply reports
// a failure that is ignored.
func (s *Suppressor) disableDrivers(ctx context.Context, inv *domain.Inventory) {
	s.console.Infof("[*] disabling drivers...")
	for _, key := range inv.DriverNames() {
		driver := inv.Drivers[key].Name

		s.console.Warnf("    [!] stopping driver: %s", driver)
		if err := s.sc.Stop(ctx, driver); err != nil {
			s.logger.Warn("driver stop failed",
				zap.String("driver", driver),
				zap.String("kind", domain.KindOf(err).String()),
				zap.Error(err))
		}

		s.console.Warnf("    [!] disabling driver: %s", driver)
		if err := s.sc.DisableStartup(ctx, driver); err != nil {
			s.console.Errorf("    [x] failed to disable driver %s: %v", driver, err)
			s.logger.Warn("driver disable failed", zap.String("driver", driver), zap.Error(err))
			continue
		}
		s.console.Successf("    [+] driver %s disabled", driver)
		s.logger.Info("driver disabled", zap.String("driver", driver))
		s.stats.DriversDisabled++
	}
}

// StopServices re-checks live run state and stops each running service. Used
// both during suppression and on every monitoring pass, because a disabled
// service may still be running from before suppression or may have been
// restarted by something outside our visibility.
func (s *Suppressor) StopServices(ctx context.Context, inv *domain.Inventory, quiet bool) int {
	stopped := 0
	for _, key := range inv.ServiceNames() {
		service := inv.Services[key].Name

		running, err := s.sc.IsRunning(ctx, service)
		if err != nil {
			s.logger.Debug("service state query failed",
				zap.String("service", service),
				zap.String("kind", domain.KindOf(err).String()))
			continue
		}
		if !running {
			continue
		}

		s.console.Warnf("    [!] stopping service: %s", service)
		s.logger.Info("stopping service", zap.String("service", service))
		if err := s.sc.Stop(ctx, service); err != nil {
			if !quiet {
				s.console.Errorf("    [x] failed to stop service %s: %v", service, err)
			}
			s.logger.Warn("service stop failed", zap.String("service", service), zap.Error(err))
			continue
		}
		s.console.Successf("    [+] service %s stopped", service)
		stopped++
		s.stats.ServicesStopped++
	}

	if stopped == 0 && !quiet {
		s.console.Infof("    [-] no running target services")
	}
	return stopped
}

// stopAndDisableServices stops running services, then disables startup for
// every service regardless of how the stop went: a timed-out stop must not
// leave the restart path open.
func (s *Suppressor) stopAndDisableServices(ctx context.Context, inv *domain.Inventory) {
	s.console.Infof("[*] stopping services...")
	s.StopServices(ctx, inv, false)

	s.console.Infof("[*] disabling service startup...")
	for _, key := range inv.ServiceNames() {
		service := inv.Services[key].Name

		s.console.Warnf("    [!] disabling service: %s", service)
		if err := s.sc.DisableStartup(ctx, service); err != nil {
			s.console.Errorf("    [x] failed to disable service %s: %v", service, err)
			s.logger.Warn("service disable failed", zap.String("service", service), zap.Error(err))
			continue
		}
		s.console.Successf("    [+] service %s set to disabled", service)
		s.logger.Info("service startup disabled", zap.String("service", service))
		s.stats.ServicesDisabled++
	}
}

// disableTasks disables every matched scheduled task.
func (s *Suppressor) disableTasks(ctx context.Context, inv *domain.Inventory) {
	s.console.Infof("[*] disabling scheduled tasks...")
	for _, key := range inv.TaskNames() {
		task := inv.Tasks[key].Name

		s.console.Warnf("    [!] disabling task: %s", task)
		if err := s.ts.DisableTask(ctx, task); err != nil {
			s.console.Errorf("    [x] failed to disable task %s: %v", task, err)
			s.logger.Warn("task disable failed", zap.String("task", task), zap.Error(err))
			continue
		}
		s.console.Successf("    [+] task %s disabled", task)
		s.logger.Info("task disabled", zap.String("task", task))
		s.stats.TasksDisabled++
	}
}
