package infra

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"sfpurge/internal/domain"
)

// waitPollInterval is how often WaitExit re-checks liveness.
const waitPollInterval = 100 * time.Millisecond

// GopsutilProcessManager implements domain.ProcessManager using gopsutil.
type GopsutilProcessManager struct {
	logger *zap.Logger
}

// NewProcessManager creates a new process manager.
func NewProcessManager(logger *zap.Logger) domain.ProcessManager {
	return &GopsutilProcessManager{logger: logger}
}

// Snapshot enumerates all live processes. Processes that exit or deny access
// mid-enumeration are skipped, never reported as errors.
func (pm *GopsutilProcessManager) Snapshot(ctx context.Context) ([]domain.ProcessRecord, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, domain.NewOpError(domain.ErrUnexpected, "process snapshot", "", err)
	}

	records := make([]domain.ProcessRecord, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue // exited or access denied between listing and query
		}
		ppid, err := p.PpidWithContext(ctx)
		if err != nil {
			ppid = 0
		}
		records = append(records, domain.ProcessRecord{
			PID:       p.Pid,
			ParentPID: ppid,
			Name:      name,
		})
	}
	return records, nil
}

// Kill forcefully terminates a process by PID.
func (pm *GopsutilProcessManager) Kill(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return classifyProcErr("kill", pid, err)
	}
	if err := p.KillWithContext(ctx); err != nil {
		return classifyProcErr("kill", pid, err)
	}
	return nil
}

// WaitExit polls liveness until the process is gone or the timeout elapses.
// gopsutil has no wait primitive for non-child processes, so this is the
// portable equivalent of a bounded wait.
func (pm *GopsutilProcessManager) WaitExit(ctx context.Context, pid int32, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		running, err := process.PidExistsWithContext(ctx, pid)
		if err != nil || !running {
			return nil
		}
		if time.Now().After(deadline) {
			return domain.NewOpError(domain.ErrTimeout, "wait exit", pidString(pid), nil)
		}
		select {
		case <-ctx.Done():
			return domain.NewOpError(domain.ErrTimeout, "wait exit", pidString(pid), ctx.Err())
		case <-time.After(waitPollInterval):
		}
	}
}

// Terminate sends the softer termination signal.
func (pm *GopsutilProcessManager) Terminate(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return classifyProcErr("terminate", pid, err)
	}
	if err := p.TerminateWithContext(ctx); err != nil {
		return classifyProcErr("terminate", pid, err)
	}
	return nil
}

func classifyProcErr(op string, pid int32, err error) error {
	kind := domain.ErrUnexpected
	switch {
	case errors.Is(err, process.ErrorProcessNotRunning), errors.Is(err, os.ErrProcessDone):
		kind = domain.ErrNotFound
	case os.IsPermission(err):
		kind = domain.ErrPermission
	}
	return domain.NewOpError(kind, op, pidString(pid), err)
}

func pidString(pid int32) string {
	return "pid " + strconv.Itoa(int(pid))
}

var _ domain.ProcessManager = (*GopsutilProcessManager)(nil)
