package usecase

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"sfpurge/internal/domain"
	"sfpurge/internal/policy"
	"sfpurge/internal/ui"
)

// candidate is a snapshot process matched against the identity set.
type candidate struct {
	domain.ProcessRecord
	isWatchdog bool
}

// TerminationEngine kills every live process whose executable stem is in the
// identity set, in two phases: watchdog-like first, then the rest, each phase
// ascending by PID as a cheap parent-before-child approximation.
type TerminationEngine struct {
	pm      domain.ProcessManager
	target  policy.Target
	console *ui.Console
	logger  *zap.Logger
	stats   *domain.Stats
}

// NewTerminationEngine creates a termination engine.
func NewTerminationEngine(pm domain.ProcessManager, target policy.Target, console *ui.Console, logger *zap.Logger, stats *domain.Stats) *TerminationEngine {
	return &TerminationEngine{pm: pm, target: target, console: console, logger: logger, stats: stats}
}

// Kill runs one full termination pass over a fresh process snapshot and
// returns the number of processes terminated. Invoking it with no matching
// process alive is a no-op reporting zero.
func (t *TerminationEngine) Kill(ctx context.Context, inv *domain.Inventory) int {
	snapshot, err := t.pm.Snapshot(ctx)
	if err != nil {
		t.console.Errorf("[!] process snapshot failed: %v", err)
		t.logger.Warn("process snapshot failed", zap.Error(err))
		return 0
	}

	var watchdogs, others []candidate
	for _, proc := range snapshot {
		identity, ok := inv.Executables[proc.Stem()]
		if !ok {
			continue
		}
		c := candidate{ProcessRecord: proc, isWatchdog: identity.IsWatchdog}
		if c.isWatchdog {
			watchdogs = append(watchdogs, c)
		} else {
			others = append(others, c)
		}
	}

	killed := 0

	// Phase A: watchdogs first. Killing a supervisor can race with its
	// monitored child, so after this phase we pause briefly to let in-flight
	// respawns settle before phase B sweeps them up.
	if len(watchdogs) > 0 {
		killed += t.killPhase(ctx, watchdogs, "watchdog", t.target.Timeouts.KillWait)
		if killed > 0 {
			time.Sleep(t.target.PhasePause)
		}
	}

	killed += t.killPhase(ctx, others, "process", t.target.Timeouts.ExitWait)

	if killed > 0 {
		t.console.Successf("    [+] terminated %d processes this pass", killed)
	}
	t.stats.ProcessesKilled += killed
	return killed
}

// killPhase kills one candidate group ascending by PID. A process that
// vanished between snapshot and kill counts as already gone, not as a
// failure; a kill whose exit wait times out gets exactly one escalating
// terminate signal instead of a retry.
func (t *TerminationEngine) killPhase(ctx context.Context, candidates []candidate, label string, wait time.Duration) int {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].PID < candidates[j].PID })

	killed := 0
	for _, c := range candidates {
		t.console.Warnf("    [!] killing %s: %s (PID %d)", label, c.Name, c.PID)
		t.logger.Info("killing process",
			zap.String("kind", label),
			zap.String("name", c.Name),
			zap.Int32("pid", c.PID),
			zap.Int32("ppid", c.ParentPID))

		if err := t.pm.Kill(ctx, c.PID); err != nil {
			switch domain.KindOf(err) {
			case domain.ErrNotFound:
				t.logger.Debug("process already gone", zap.Int32("pid", c.PID))
			case domain.ErrPermission:
				t.console.Errorf("    [x] access denied killing PID %d", c.PID)
				t.logger.Warn("kill access denied", zap.Int32("pid", c.PID), zap.Error(err))
			default:
				t.logger.Warn("kill failed", zap.Int32("pid", c.PID), zap.Error(err))
			}
			continue
		}

		if err := t.pm.WaitExit(ctx, c.PID, wait); err != nil {
			t.logger.Warn("exit wait timed out, escalating",
				zap.Int32("pid", c.PID), zap.Error(err))
			if err := t.pm.Terminate(ctx, c.PID); err != nil && domain.KindOf(err) != domain.ErrNotFound {
				t.logger.Warn("terminate failed", zap.Int32("pid", c.PID), zap.Error(err))
			}
			continue
		}

		killed++
	}
	return killed
}
