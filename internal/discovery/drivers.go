package discovery

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"sfpurge/internal/domain"
	"sfpurge/internal/policy"
	"sfpurge/internal/ui"
)

// DriverResolver matches driver-class services by name only. Driver binary
// paths point into system directories rather than the install tree, so path
// probing is deliberately left out.
type DriverResolver struct {
	sc      domain.ServiceController
	target  policy.Target
	console *ui.Console
	logger  *zap.Logger
}

// NewDriverResolver creates a driver resolver.
func NewDriverResolver(sc domain.ServiceController, target policy.Target, console *ui.Console, logger *zap.Logger) *DriverResolver {
	return &DriverResolver{sc: sc, target: target, console: console, logger: logger}
}

// Resolve fills inv.Drivers with vendor-named driver services.
func (r *DriverResolver) Resolve(ctx context.Context, inv *domain.Inventory) {
	r.console.Infof("[*] resolving drivers...")

	drivers, err := r.sc.ListDrivers(ctx)
	if err != nil {
		r.console.Warnf("[!] cannot list drivers: %v", err)
		r.logger.Warn("driver listing failed", zap.Error(err))
		return
	}

	for _, name := range drivers {
		if !r.target.MatchesVendor(name) {
			continue
		}
		key := strings.ToLower(name)
		if _, exists := inv.Drivers[key]; exists {
			continue
		}
		inv.Drivers[key] = domain.DriverRecord{Name: name}
		r.console.Successf("    [driver] %s", name)
		r.logger.Info("found driver", zap.String("driver", name))
	}

	if len(inv.Drivers) > 0 {
		r.console.Successf("[+] %d matching drivers", len(inv.Drivers))
	} else {
		r.console.Infof("[*] no matching drivers")
	}
}
