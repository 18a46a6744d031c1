// Package infra implements infrastructure concerns: volumes, the service
// control and scheduler command collaborators, and the live process surface.
package infra

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"

	"sfpurge/internal/domain"
)

// CommandRunner executes one collaborator command within a bounded timeout
// and returns its output as a structured result. Implementations never panic
// on missing binaries or hostile output; callers get an OpError instead.
type CommandRunner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (domain.CmdResult, error)
}

// ExecRunner runs real OS commands via exec.CommandContext.
type ExecRunner struct {
	encoding string
	logger   *zap.Logger
}

// NewExecRunner creates a runner. encoding selects how raw command output is
// decoded; "gbk" covers localized zh-CN consoles, anything else passes
// through as UTF-8.
func NewExecRunner(encoding string, logger *zap.Logger) *ExecRunner {
	return &ExecRunner{encoding: encoding, logger: logger}
}

// Run executes the command and captures combined output. A non-zero exit with
// captured text is NOT an error here: sc and schtasks report useful state on
// stderr/stdout with unreliable exit codes, so callers match marker tokens on
// RawText and use Succeeded only as a hint.
func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (domain.CmdResult, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	op := name + " " + strings.Join(args, " ")
	out, err := exec.CommandContext(cctx, name, args...).CombinedOutput()
	text := r.decode(out)

	if cctx.Err() == context.DeadlineExceeded {
		r.logger.Debug("command timed out", zap.String("cmd", op), zap.Duration("timeout", timeout))
		return domain.CmdResult{RawText: text}, domain.NewOpError(domain.ErrTimeout, op, "", cctx.Err())
	}

	if err != nil && len(strings.TrimSpace(text)) == 0 {
		kind := domain.ErrUnexpected
		switch {
		case errors.Is(err, exec.ErrNotFound):
			kind = domain.ErrNotFound
		case os.IsPermission(err):
			kind = domain.ErrPermission
		}
		r.logger.Debug("command failed with no output", zap.String("cmd", op), zap.Error(err))
		return domain.CmdResult{}, domain.NewOpError(kind, op, "", err)
	}

	return domain.CmdResult{Succeeded: err == nil, RawText: text}, nil
}

func (r *ExecRunner) decode(b []byte) string {
	if r.encoding == "gbk" {
		if decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(b); err == nil {
			return string(decoded)
		}
	}
	return string(b)
}

var _ CommandRunner = (*ExecRunner)(nil)
