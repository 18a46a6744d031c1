// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import (
	"sort"
	"strings"
)

// ExecutableIdentity is one distinct executable discovered under a target
// directory. Name is the case-folded filename stem (no extension).
type ExecutableIdentity struct {
	Name       string
	IsWatchdog bool
}

// ServiceRecord is a service matched to the target, either by name or by its
// configured binary path. Run state is never stored here; it is re-queried
// live whenever a caller needs it.
type ServiceRecord struct {
	Name       string
	BinaryPath string // empty when the service was matched by name alone
}

// DriverRecord is a driver-class service matched by name.
type DriverRecord struct {
	Name string
}

// ScheduledTaskRecord is a scheduled task matched by name, command path, or
// cross-reference against the discovered executable set.
type ScheduledTaskRecord struct {
	Name    string
	Program string // command string from the verbose task listing, may be empty
}

// ProcessRecord is one live process from a snapshot. It is valid only for the
// instant of the scan that produced it; the process may exit at any time.
type ProcessRecord struct {
	PID       int32
	ParentPID int32
	Name      string // executable name as reported by the OS
}

// Stem returns the case-folded executable name without extension.
func (p ProcessRecord) Stem() string {
	name := p.Name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

// Inventory is the static target set built once during the discovery phase.
// All maps are keyed by case-folded name so duplicate discovery (e.g. a
// service found by both name-match and path-match) collapses to one record.
// The monitoring loop treats an Inventory as read-only.
type Inventory struct {
	Directories []string
	Executables map[string]ExecutableIdentity
	Services    map[string]ServiceRecord
	Drivers     map[string]DriverRecord
	Tasks       map[string]ScheduledTaskRecord
}

// NewInventory returns an empty inventory with all sets allocated.
func NewInventory() *Inventory {
	return &Inventory{
		Executables: make(map[string]ExecutableIdentity),
		Services:    make(map[string]ServiceRecord),
		Drivers:     make(map[string]DriverRecord),
		Tasks:       make(map[string]ScheduledTaskRecord),
	}
}

// Watchdogs returns the watchdog-classified subset of the executable set,
// sorted by name for stable output.
func (inv *Inventory) Watchdogs() []ExecutableIdentity {
	var out []ExecutableIdentity
	for _, e := range inv.Executables {
		if e.IsWatchdog {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ServiceNames returns the matched service names, sorted.
func (inv *Inventory) ServiceNames() []string {
	return sortedKeys(inv.Services)
}

// DriverNames returns the matched driver names, sorted.
func (inv *Inventory) DriverNames() []string {
	return sortedKeys(inv.Drivers)
}

// TaskNames returns the matched scheduled task names, sorted.
func (inv *Inventory) TaskNames() []string {
	return sortedKeys(inv.Tasks)
}

// HasSuppressibleTargets reports whether any restart vector was discovered.
func (inv *Inventory) HasSuppressibleTargets() bool {
	return len(inv.Services) > 0 || len(inv.Drivers) > 0 || len(inv.Tasks) > 0
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats accumulates running totals across the whole run. A single instance is
// owned by the engine and passed to every component; there is no ambient
// global state.
type Stats struct {
	ProcessesKilled  int
	ServicesStopped  int
	ServicesDisabled int
	DriversDisabled  int
	TasksDisabled    int
}

// CmdResult is the structured outcome of one collaborator command invocation.
// RawText is kept so callers can match locale-dependent marker tokens even
// when the command's exit status is unreliable.
type CmdResult struct {
	Succeeded bool
	RawText   string
}
