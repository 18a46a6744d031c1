package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"sfpurge/internal/domain"
	"sfpurge/internal/policy"
)

// mockServiceController implements domain.ServiceController for resolver tests.
type mockServiceController struct {
	services    []string
	drivers     []string
	binaryPaths map[string]string
	pathErrs    map[string]error
	listErr     error
}

func (m *mockServiceController) ListServices(ctx context.Context) ([]string, error) {
	return m.services, m.listErr
}

func (m *mockServiceController) ListDrivers(ctx context.Context) ([]string, error) {
	return m.drivers, m.listErr
}

func (m *mockServiceController) BinaryPath(ctx context.Context, name string) (string, error) {
	if err, ok := m.pathErrs[name]; ok {
		return "", err
	}
	if path, ok := m.binaryPaths[name]; ok {
		return path, nil
	}
	return "", domain.NewOpError(domain.ErrNotFound, "sc qc", name, nil)
}

func (m *mockServiceController) IsRunning(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func (m *mockServiceController) Stop(ctx context.Context, name string) error { return nil }

func (m *mockServiceController) DisableStartup(ctx context.Context, name string) error { return nil }

func resolveServices(t *testing.T, sc domain.ServiceController, dirs []string) *domain.Inventory {
	t.Helper()
	inv := domain.NewInventory()
	inv.Directories = dirs
	NewServiceResolver(sc, policy.Sangfor(), testConsole(), zap.NewNop()).
		Resolve(context.Background(), inv)
	return inv
}

// TestResolveServices_NameMatch verifies pass 1 keeps vendor-named services,
// case-insensitively.
func TestResolveServices_NameMatch(t *testing.T) {
	sc := &mockServiceController{
		services: []string{"SangforEDR", "sangforagent", "Spooler"},
	}

	inv := resolveServices(t, sc, nil)

	assert.Len(t, inv.Services, 2)
	assert.Contains(t, inv.Services, "sangforedr")
	assert.Contains(t, inv.Services, "sangforagent")
}

// TestResolveServices_PathMatch verifies pass 2 catches a differently-named
// service whose binary lives under a located directory.
func TestResolveServices_PathMatch(t *testing.T) {
	sc := &mockServiceController{
		services: []string{"EPSAgent", "Spooler"},
		binaryPaths: map[string]string{
			"EPSAgent": `c:\program files\sangfor\eps\epsagent.exe`,
			"Spooler":  `C:\Windows\System32\spoolsv.exe`,
		},
	}

	inv := resolveServices(t, sc, []string{`C:\Program Files\Sangfor`})

	assert.Len(t, inv.Services, 1)
	assert.Contains(t, inv.Services, "epsagent")
	assert.Equal(t, `c:\program files\sangfor\eps\epsagent.exe`, inv.Services["epsagent"].BinaryPath)
}

// TestResolveServices_DedupAcrossPasses verifies a service matched by name is
// not re-added (or re-queried into a duplicate) by the path pass.
func TestResolveServices_DedupAcrossPasses(t *testing.T) {
	sc := &mockServiceController{
		services: []string{"SangforEDR"},
		binaryPaths: map[string]string{
			"SangforEDR": `C:\Program Files\Sangfor\EDR\edr.exe`,
		},
	}

	inv := resolveServices(t, sc, []string{`C:\Program Files\Sangfor`})

	assert.Len(t, inv.Services, 1)
}

// TestResolveServices_QueryFailureSkipsService verifies a per-service query
// failure excludes that one service only.
func TestResolveServices_QueryFailureSkipsService(t *testing.T) {
	sc := &mockServiceController{
		services: []string{"EPSAgent", "OtherAgent"},
		binaryPaths: map[string]string{
			"OtherAgent": `C:\Program Files\Sangfor\other\other.exe`,
		},
		pathErrs: map[string]error{
			"EPSAgent": domain.NewOpError(domain.ErrTimeout, "sc qc", "EPSAgent", context.DeadlineExceeded),
		},
	}

	inv := resolveServices(t, sc, []string{`C:\Program Files\Sangfor`})

	assert.Len(t, inv.Services, 1)
	assert.Contains(t, inv.Services, "otheragent")
}

// TestResolveServices_ListFailureIsContained verifies a failed listing leaves
// the inventory empty without propagating.
func TestResolveServices_ListFailureIsContained(t *testing.T) {
	sc := &mockServiceController{listErr: errors.New("rpc unavailable")}

	inv := resolveServices(t, sc, nil)

	assert.Empty(t, inv.Services)
}

// TestResolveDrivers_NameOnly verifies driver matching ignores paths.
func TestResolveDrivers_NameOnly(t *testing.T) {
	sc := &mockServiceController{
		drivers: []string{"sfnetmon", "SangforFilter", "ndis"},
	}

	inv := domain.NewInventory()
	NewDriverResolver(sc, policy.Sangfor(), testConsole(), zap.NewNop()).
		Resolve(context.Background(), inv)

	assert.Len(t, inv.Drivers, 1)
	assert.Contains(t, inv.Drivers, "sangforfilter")
}
