package discovery

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"sfpurge/internal/domain"
	"sfpurge/internal/policy"
	"sfpurge/internal/ui"
)

// TaskResolver matches scheduled tasks by task name, by command path, or by
// cross-referencing the command against the discovered executable set.
type TaskResolver struct {
	ts      domain.TaskScheduler
	target  policy.Target
	console *ui.Console
	logger  *zap.Logger
}

// NewTaskResolver creates a task resolver.
func NewTaskResolver(ts domain.TaskScheduler, target policy.Target, console *ui.Console, logger *zap.Logger) *TaskResolver {
	return &TaskResolver{ts: ts, target: target, console: console, logger: logger}
}

// Resolve fills inv.Tasks. Per task the rules apply in priority order with
// first match winning: vendor keyword in the task name, vendor keyword in the
// command, then any discovered executable identity in the command. Set
// semantics keep a task unique however many rules it satisfies.
func (r *TaskResolver) Resolve(ctx context.Context, inv *domain.Inventory) {
	r.console.Infof("[*] resolving scheduled tasks...")

	tasks, err := r.ts.ListTasks(ctx)
	if err != nil {
		r.console.Warnf("[!] cannot list scheduled tasks: %v", err)
		r.logger.Warn("task listing failed", zap.Error(err))
		return
	}

	for _, task := range tasks {
		switch {
		case r.target.MatchesVendor(task.Name):
			r.add(inv, task, "name match")
		case task.Program != "" && r.target.MatchesVendor(task.Program):
			r.add(inv, task, "path match")
		case task.Program != "":
			program := strings.ToLower(task.Program)
			for stem := range inv.Executables {
				if strings.Contains(program, stem) {
					r.add(inv, task, "program match")
					break
				}
			}
		}
	}

	r.console.Successf("[+] %d matching scheduled tasks", len(inv.Tasks))
	r.logger.Info("tasks resolved", zap.Int("count", len(inv.Tasks)))
}

func (r *TaskResolver) add(inv *domain.Inventory, task domain.ScheduledTaskRecord, how string) {
	key := strings.ToLower(task.Name)
	if _, exists := inv.Tasks[key]; exists {
		return
	}
	inv.Tasks[key] = task
	r.console.Successf("    [%s] task: %s", how, task.Name)
	r.logger.Info("found scheduled task", zap.String("task", task.Name), zap.String("how", how))
}
