package infra

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sfpurge/internal/domain"
	"sfpurge/internal/policy"
)

// ServiceControl implements domain.ServiceController on top of the sc
// command. Output is matched against the policy marker table line by line, so
// a localized install changes wording without changing behavior.
type ServiceControl struct {
	runner   CommandRunner
	markers  policy.Markers
	timeouts policy.Timeouts
	logger   *zap.Logger
}

// NewServiceControl creates the sc-backed controller.
func NewServiceControl(runner CommandRunner, target policy.Target, logger *zap.Logger) *ServiceControl {
	return &ServiceControl{
		runner:   runner,
		markers:  target.Markers,
		timeouts: target.Timeouts,
		logger:   logger,
	}
}

// ListServices returns the names of all installed services.
func (s *ServiceControl) ListServices(ctx context.Context) ([]string, error) {
	res, err := s.runner.Run(ctx, s.timeouts.List, "sc", "query", "state=", "all")
	if err != nil {
		return nil, err
	}
	return s.parseNames(res.RawText), nil
}

// ListDrivers returns driver-class service names only.
func (s *ServiceControl) ListDrivers(ctx context.Context) ([]string, error) {
	res, err := s.runner.Run(ctx, s.timeouts.List, "sc", "query", "type=", "driver")
	if err != nil {
		return nil, err
	}
	return s.parseNames(res.RawText), nil
}

func (s *ServiceControl) parseNames(text string) []string {
	var names []string
	for _, line := range strings.Split(text, "\n") {
		if name, ok := markerValue(line, s.markers.ServiceName); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

// BinaryPath returns the configured binary path of a service, or an
// ErrNotFound OpError when the config omits one.
func (s *ServiceControl) BinaryPath(ctx context.Context, name string) (string, error) {
	res, err := s.runner.Run(ctx, s.timeouts.Query, "sc", "qc", name)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(res.RawText, "\n") {
		if path, ok := markerValue(line, s.markers.BinaryPath); ok {
			return path, nil
		}
	}
	return "", domain.NewOpError(domain.ErrNotFound, "sc qc", name,
		fmt.Errorf("no binary path in config output"))
}

// IsRunning reports live run state. The whole query output is scanned for the
// running marker, matching how the state line is formatted ("STATE : 4 RUNNING").
func (s *ServiceControl) IsRunning(ctx context.Context, name string) (bool, error) {
	res, err := s.runner.Run(ctx, s.timeouts.Query, "sc", "query", name)
	if err != nil {
		return false, err
	}
	return containsAny(res.RawText, s.markers.Running), nil
}

// Stop sends the stop control. Success means the command exited cleanly or
// the output carries a pending-stop marker; anything else is an unexpected
// failure for this attempt (no retry within a pass).
func (s *ServiceControl) Stop(ctx context.Context, name string) error {
	res, err := s.runner.Run(ctx, s.timeouts.Action, "sc", "stop", name)
	if err != nil {
		return err
	}
	if res.Succeeded || containsAny(res.RawText, s.markers.StopPending) {
		return nil
	}
	return domain.NewOpError(domain.ErrUnexpected, "sc stop", name,
		fmt.Errorf("no stop confirmation: %s", firstLine(res.RawText)))
}

// DisableStartup sets the start mode to disabled.
func (s *ServiceControl) DisableStartup(ctx context.Context, name string) error {
	res, err := s.runner.Run(ctx, s.timeouts.Action, "sc", "config", name, "start=", "disabled")
	if err != nil {
		return err
	}
	if res.Succeeded || containsAny(res.RawText, s.markers.Success) {
		return nil
	}
	return domain.NewOpError(domain.ErrUnexpected, "sc config", name,
		fmt.Errorf("no success confirmation: %s", firstLine(res.RawText)))
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(line)
}

var _ domain.ServiceController = (*ServiceControl)(nil)
