// Package discovery builds the static target inventory: install directories,
// executable identities, and the service/driver/task restart vectors. It runs
// exactly once per invocation; the monitoring loop only re-reads live OS
// state against the sets built here.
package discovery

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"sfpurge/internal/domain"
	"sfpurge/internal/policy"
	"sfpurge/internal/ui"
)

// Locator probes the candidate install paths on every fixed volume.
type Locator struct {
	volumes domain.VolumeLister
	target  policy.Target
	console *ui.Console
	logger  *zap.Logger
}

// NewLocator creates a directory locator.
func NewLocator(volumes domain.VolumeLister, target policy.Target, console *ui.Console, logger *zap.Logger) *Locator {
	return &Locator{volumes: volumes, target: target, console: console, logger: logger}
}

// Locate returns every existing candidate directory. An unreadable volume is
// skipped; an empty result is a normal outcome, not an error.
func (l *Locator) Locate(ctx context.Context) []string {
	volumes, err := l.volumes.FixedVolumes(ctx)
	if err != nil {
		l.console.Errorf("[!] failed to enumerate volumes: %v", err)
		l.logger.Warn("volume enumeration failed", zap.Error(err))
		return nil
	}
	l.console.Infof("[*] fixed volumes: %v", volumes)

	var dirs []string
	for _, volume := range volumes {
		for _, candidate := range l.target.InstallPaths {
			full := filepath.Join(volume, filepath.FromSlash(candidate))
			info, err := os.Stat(full)
			if err != nil || !info.IsDir() {
				continue
			}
			l.console.Successf("[+] found target directory: %s", full)
			l.logger.Info("found target directory", zap.String("dir", full))
			dirs = append(dirs, full)
		}
	}
	return dirs
}
