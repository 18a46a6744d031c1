//go:build integration

package integration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"sfpurge/internal/domain"
)

// fakeVolumes presents the test's temp directory as the only fixed volume,
// so the real locator probes real directories under a controlled root.
type fakeVolumes struct {
	roots []string
}

func (f *fakeVolumes) FixedVolumes(ctx context.Context) ([]string, error) {
	return f.roots, nil
}

// scriptedRunner stands in for the real command runner. It serves canned
// sc/schtasks output and tracks run-state transitions: once a service is
// stopped, later state queries report it stopped.
type scriptedRunner struct {
	mu sync.Mutex

	serviceListing string
	driverListing  string
	taskListing    string
	binaryPaths    map[string]string

	stopped map[string]bool
	calls   []string
}

func newScriptedRunner() *scriptedRunner {
	return &scriptedRunner{
		binaryPaths: map[string]string{},
		stopped:     map[string]bool{},
	}
}

func (r *scriptedRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (domain.CmdResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, key)

	switch {
	case key == "sc query state= all":
		return succeed(r.serviceListing), nil
	case key == "sc query type= driver":
		return succeed(r.driverListing), nil
	case key == "schtasks /query /fo LIST /v":
		return succeed(r.taskListing), nil
	case name == "sc" && args[0] == "qc":
		path, found := r.binaryPaths[args[1]]
		if !found {
			return domain.CmdResult{}, domain.NewOpError(domain.ErrNotFound, key, args[1], errors.New("no such service"))
		}
		return succeed("SERVICE_NAME: " + args[1] + "\n        BINARY_PATH_NAME   : " + path), nil
	case name == "sc" && args[0] == "query":
		if r.stopped[args[1]] {
			return succeed("        STATE              : 1  STOPPED"), nil
		}
		return succeed("        STATE              : 4  RUNNING"), nil
	case name == "sc" && args[0] == "stop":
		r.stopped[args[1]] = true
		return succeed("        STATE              : 3  STOP_PENDING"), nil
	case name == "sc" && args[0] == "config":
		return succeed("[SC] ChangeServiceConfig SUCCESS"), nil
	case name == "schtasks" && args[0] == "/change":
		return succeed(`SUCCESS: The parameters of scheduled task "` + args[2] + `" have been changed.`), nil
	}
	return domain.CmdResult{}, domain.NewOpError(domain.ErrUnexpected, key, "", errors.New("unscripted command"))
}

func (r *scriptedRunner) callLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func succeed(text string) domain.CmdResult {
	return domain.CmdResult{Succeeded: true, RawText: text}
}

// fakeProcessManager is an in-memory process table. Killing a process removes
// it, so later snapshots reflect the kill the way a real system would.
type fakeProcessManager struct {
	mu     sync.Mutex
	procs  map[int32]domain.ProcessRecord
	killed []int32
}

func newFakeProcessManager(procs ...domain.ProcessRecord) *fakeProcessManager {
	table := make(map[int32]domain.ProcessRecord, len(procs))
	for _, p := range procs {
		table[p.PID] = p
	}
	return &fakeProcessManager{procs: table}
}

func (f *fakeProcessManager) Snapshot(ctx context.Context) ([]domain.ProcessRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.ProcessRecord, 0, len(f.procs))
	for _, p := range f.procs {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProcessManager) Kill(ctx context.Context, pid int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.procs[pid]; !ok {
		return domain.NewOpError(domain.ErrNotFound, "kill", "", errors.New("process already gone"))
	}
	delete(f.procs, pid)
	f.killed = append(f.killed, pid)
	return nil
}

func (f *fakeProcessManager) WaitExit(ctx context.Context, pid int32, timeout time.Duration) error {
	return nil
}

func (f *fakeProcessManager) Terminate(ctx context.Context, pid int32) error {
	return nil
}

func (f *fakeProcessManager) killedPIDs() []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int32(nil), f.killed...)
}
