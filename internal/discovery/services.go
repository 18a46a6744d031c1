package discovery

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"sfpurge/internal/domain"
	"sfpurge/internal/policy"
	"sfpurge/internal/ui"
)

// ServiceResolver matches installed services to the target, first by name,
// then by configured binary path.
type ServiceResolver struct {
	sc      domain.ServiceController
	target  policy.Target
	console *ui.Console
	logger  *zap.Logger
}

// NewServiceResolver creates a service resolver.
func NewServiceResolver(sc domain.ServiceController, target policy.Target, console *ui.Console, logger *zap.Logger) *ServiceResolver {
	return &ServiceResolver{sc: sc, target: target, console: console, logger: logger}
}

// Resolve fills inv.Services. Pass 1 keeps every service whose name contains
// the vendor keyword. Pass 2 queries the binary path of each remaining
// service and keeps it when the path textually contains a located directory.
// The path check is a raw case-folded substring, same as the query surface
// it fronts; an unrelated path that happens to embed the directory string
// would match too (known heuristic limitation, preserved on purpose).
// Per-service query failures exclude that service without retry.
func (r *ServiceResolver) Resolve(ctx context.Context, inv *domain.Inventory) {
	r.console.Infof("[*] resolving services...")

	all, err := r.sc.ListServices(ctx)
	if err != nil {
		r.console.Warnf("[!] cannot list services: %v", err)
		r.logger.Warn("service listing failed", zap.Error(err))
		return
	}

	for _, name := range all {
		if r.target.MatchesVendor(name) {
			r.add(inv, domain.ServiceRecord{Name: name}, "name match")
		}
	}

	r.console.Infof("    checking service binary paths...")
	folded := make([]string, len(inv.Directories))
	for i, dir := range inv.Directories {
		folded[i] = strings.ToLower(dir)
	}

	for _, name := range all {
		if _, matched := inv.Services[strings.ToLower(name)]; matched {
			continue
		}
		path, err := r.sc.BinaryPath(ctx, name)
		if err != nil {
			r.logger.Debug("binary path query failed",
				zap.String("service", name),
				zap.String("kind", domain.KindOf(err).String()))
			continue
		}
		pathFolded := strings.ToLower(path)
		for _, dir := range folded {
			if dir != "" && strings.Contains(pathFolded, dir) {
				r.add(inv, domain.ServiceRecord{Name: name, BinaryPath: path}, "path match")
				break
			}
		}
	}

	r.console.Successf("[+] %d matching services", len(inv.Services))
	r.logger.Info("services resolved", zap.Int("count", len(inv.Services)))
}

func (r *ServiceResolver) add(inv *domain.Inventory, rec domain.ServiceRecord, how string) {
	key := strings.ToLower(rec.Name)
	if _, exists := inv.Services[key]; exists {
		return
	}
	inv.Services[key] = rec
	r.console.Successf("    [%s] service: %s", how, rec.Name)
	r.logger.Info("found service", zap.String("service", rec.Name), zap.String("how", how))
}
