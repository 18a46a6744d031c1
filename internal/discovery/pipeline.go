package discovery

import (
	"context"

	"sfpurge/internal/domain"
)

// Pipeline runs the whole discovery phase in order: locate directories,
// collect executables, resolve services, drivers, and tasks, then report
// restart sources. The returned inventory is complete and read-only from the
// caller's point of view.
type Pipeline struct {
	locator   *Locator
	collector *Collector
	services  *ServiceResolver
	drivers   *DriverResolver
	tasks     *TaskResolver
	analyzer  *Analyzer
}

// NewPipeline wires the discovery components.
func NewPipeline(locator *Locator, collector *Collector, services *ServiceResolver, drivers *DriverResolver, tasks *TaskResolver, analyzer *Analyzer) *Pipeline {
	return &Pipeline{
		locator:   locator,
		collector: collector,
		services:  services,
		drivers:   drivers,
		tasks:     tasks,
		analyzer:  analyzer,
	}
}

// Discover builds the static inventory. When no install directory exists the
// inventory comes back empty and no registry queries are made: downstream
// treats that as the normal "no targets found" outcome.
func (p *Pipeline) Discover(ctx context.Context) *domain.Inventory {
	inv := domain.NewInventory()

	dirs := p.locator.Locate(ctx)
	if len(dirs) == 0 {
		return inv
	}

	p.collector.Collect(dirs, inv)
	p.services.Resolve(ctx, inv)
	p.drivers.Resolve(ctx, inv)
	p.tasks.Resolve(ctx, inv)
	p.analyzer.Report(inv)
	return inv
}
