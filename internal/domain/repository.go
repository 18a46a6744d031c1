package domain

import (
	"context"
	"time"
)

// VolumeLister enumerates fixed local storage volumes.
type VolumeLister interface {
	// FixedVolumes returns the root paths of fixed local volumes
	// (network drives and optical media excluded).
	FixedVolumes(ctx context.Context) ([]string, error)
}

// ServiceController is the service-registry surface backed by the platform's
// service control command. All queries are live; nothing is cached here.
type ServiceController interface {
	// ListServices returns the names of every installed service.
	ListServices(ctx context.Context) ([]string, error)

	// ListDrivers returns the names of driver-class services only.
	ListDrivers(ctx context.Context) ([]string, error)

	// BinaryPath returns the configured binary path of a service.
	BinaryPath(ctx context.Context, name string) (string, error)

	// IsRunning reports whether the service is currently running.
	IsRunning(ctx context.Context, name string) (bool, error)

	// Stop sends a stop control and confirms a pending-stop or success marker.
	Stop(ctx context.Context, name string) error

	// DisableStartup sets the service start mode to disabled.
	DisableStartup(ctx context.Context, name string) error
}

// TaskScheduler is the scheduled-task registry surface.
type TaskScheduler interface {
	// ListTasks returns every scheduled task with its configured command.
	ListTasks(ctx context.Context) ([]ScheduledTaskRecord, error)

	// DisableTask disables a task by name.
	DisableTask(ctx context.Context, name string) error
}

// ProcessManager provides the live process snapshot and termination surface.
type ProcessManager interface {
	// Snapshot returns all live processes with pid, parent pid, and name.
	// The result is valid only for the instant of the call.
	Snapshot(ctx context.Context) ([]ProcessRecord, error)

	// Kill forcefully terminates a process.
	Kill(ctx context.Context, pid int32) error

	// WaitExit blocks until the process is gone or the timeout elapses.
	// A timeout is reported as an OpError of kind ErrTimeout.
	WaitExit(ctx context.Context, pid int32, timeout time.Duration) error

	// Terminate sends the softer termination signal, used as the one-shot
	// escalation after a kill whose exit wait timed out.
	Terminate(ctx context.Context, pid int32) error
}
