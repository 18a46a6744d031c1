package infra

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sfpurge/internal/domain"
	"sfpurge/internal/policy"
)

// Scheduler implements domain.TaskScheduler on top of schtasks.
type Scheduler struct {
	runner   CommandRunner
	markers  policy.Markers
	timeouts policy.Timeouts
	logger   *zap.Logger
}

// NewScheduler creates the schtasks-backed scheduler.
func NewScheduler(runner CommandRunner, target policy.Target, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		markers:  target.Markers,
		timeouts: target.Timeouts,
		logger:   logger,
	}
}

// ListTasks queries the verbose LIST output and streams it into (name,
// program) records. The verbose format repeats a task block per trigger;
// duplicates are kept here and collapsed by the resolver's set semantics.
func (s *Scheduler) ListTasks(ctx context.Context) ([]domain.ScheduledTaskRecord, error) {
	res, err := s.runner.Run(ctx, s.timeouts.List, "schtasks", "/query", "/fo", "LIST", "/v")
	if err != nil {
		return nil, err
	}

	var (
		tasks   []domain.ScheduledTaskRecord
		current = -1
	)
	for _, line := range strings.Split(res.RawText, "\n") {
		line = strings.TrimSpace(line)
		if name, ok := markerValue(line, s.markers.TaskName); ok && name != "" {
			tasks = append(tasks, domain.ScheduledTaskRecord{Name: name})
			current = len(tasks) - 1
			continue
		}
		if program, ok := markerValue(line, s.markers.TaskToRun); ok && current >= 0 {
			if tasks[current].Program == "" {
				tasks[current].Program = program
			}
		}
	}
	return tasks, nil
}

// DisableTask disables a task by name.
func (s *Scheduler) DisableTask(ctx context.Context, name string) error {
	res, err := s.runner.Run(ctx, s.timeouts.Action, "schtasks", "/change", "/tn", name, "/disable")
	if err != nil {
		return err
	}
	if res.Succeeded || containsAny(res.RawText, s.markers.Success) {
		return nil
	}
	return domain.NewOpError(domain.ErrUnexpected, "schtasks /change", name,
		fmt.Errorf("no success confirmation: %s", firstLine(res.RawText)))
}

var _ domain.TaskScheduler = (*Scheduler)(nil)
