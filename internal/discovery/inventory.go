package discovery

import (
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"sfpurge/internal/domain"
	"sfpurge/internal/policy"
	"sfpurge/internal/ui"
)

// Collector walks the located directories and builds the executable identity
// set, classifying watchdog-like names as it goes.
type Collector struct {
	target  policy.Target
	console *ui.Console
	logger  *zap.Logger
}

// NewCollector creates an inventory collector.
func NewCollector(target policy.Target, console *ui.Console, logger *zap.Logger) *Collector {
	return &Collector{target: target, console: console, logger: logger}
}

// Collect fills inv.Executables from a recursive walk of each directory.
// First-seen wins: a later file with the same stem in another directory
// neither overwrites nor duplicates. Per-directory I/O failures are logged
// and do not abort sibling walks.
func (c *Collector) Collect(dirs []string, inv *domain.Inventory) {
	c.console.Infof("[*] collecting executables...")
	inv.Directories = dirs

	for _, dir := range dirs {
		c.console.Infof("    scanning %s", dir)
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				c.console.Warnf("[!] cannot access %s: %v", path, err)
				c.logger.Warn("walk error", zap.String("path", path), zap.Error(err))
				return nil // keep walking siblings
			}
			if d.IsDir() || !c.target.IsExecutable(d.Name()) {
				return nil
			}

			stem := strings.ToLower(strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())))
			if _, seen := inv.Executables[stem]; seen {
				return nil
			}

			identity := domain.ExecutableIdentity{
				Name:       stem,
				IsWatchdog: c.target.IsWatchdogName(stem),
			}
			inv.Executables[stem] = identity
			c.console.Plainf("      found: %s", d.Name())
			c.logger.Info("found executable", zap.String("file", d.Name()))
			if identity.IsWatchdog {
				c.console.Warnf("        looks like a watchdog process")
				c.logger.Warn("watchdog-like executable", zap.String("name", stem))
			}
			return nil
		})
		if err != nil {
			c.console.Errorf("[!] failed to scan %s: %v", dir, err)
			c.logger.Error("scan failed", zap.String("dir", dir), zap.Error(err))
		}
	}

	c.console.Successf("[+] collected %d distinct executables", len(inv.Executables))
	if watchdogs := inv.Watchdogs(); len(watchdogs) > 0 {
		names := make([]string, len(watchdogs))
		for i, w := range watchdogs {
			names[i] = w.Name
		}
		c.console.Warnf("[!] %d possible watchdog processes: %s", len(names), strings.Join(names, ", "))
	}
}
