// Package policy defines the target description: which vendor to look for,
// where its install directories may live, and how discovered names are
// classified. Everything the matching heuristics consume lives here so the
// engine logic stays free of literals and the policy stays testable.
package policy

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMonitorInterval is the fixed cadence of the convergence loop.
const DefaultMonitorInterval = 1 * time.Second

// Timeouts bounds every collaborator call. A timeout is never fatal; it means
// "this one target's information/action is unavailable right now".
type Timeouts struct {
	List     time.Duration // full service/driver/task listings
	Query    time.Duration // single service state or config query
	Action   time.Duration // stop / config / task disable
	KillWait time.Duration // exit wait after killing a watchdog process
	ExitWait time.Duration // exit wait after killing an ordinary process
}

// Target describes one software product to locate and suppress.
type Target struct {
	// Vendor is the lowercase keyword matched (as a substring,
	// case-insensitively) against service, driver, and task names.
	Vendor string `yaml:"vendor"`

	// InstallPaths are volume-relative directory candidates probed on every
	// fixed volume.
	InstallPaths []string `yaml:"install_paths"`

	// WatchdogKeywords classify an executable stem as watchdog-like when any
	// of them appears as a substring of the folded name.
	WatchdogKeywords []string `yaml:"watchdog_keywords"`

	// ExecutableExts mark a file as an executable identity (dot included).
	ExecutableExts []string `yaml:"executable_exts"`

	// OutputEncoding names the legacy console code page of collaborator
	// command output. "gbk" enables GBK decoding; empty means UTF-8.
	OutputEncoding string `yaml:"output_encoding"`

	// Markers is the locale-tolerant token table for parsing collaborator
	// command output.
	Markers Markers `yaml:"markers"`

	MonitorInterval time.Duration `yaml:"-"`
	PhasePause      time.Duration `yaml:"-"` // settle pause between kill phases
	Timeouts        Timeouts      `yaml:"-"`
}

// Markers holds the line-marker tokens for parsing service-control and
// scheduler command output. Each field carries the platform-native token plus
// localized variants, so a localized install does not break matching.
type Markers struct {
	ServiceName []string `yaml:"service_name"`
	BinaryPath  []string `yaml:"binary_path"`
	Running     []string `yaml:"running"`
	StopPending []string `yaml:"stop_pending"`
	Success     []string `yaml:"success"`
	TaskName    []string `yaml:"task_name"`
	TaskToRun   []string `yaml:"task_to_run"`
}

// DefaultMarkers covers English and zh-CN output of sc and schtasks.
func DefaultMarkers() Markers {
	return Markers{
		ServiceName: []string{"SERVICE_NAME:"},
		BinaryPath:  []string{"BINARY_PATH_NAME"},
		Running:     []string{"RUNNING"},
		StopPending: []string{"STOP_PENDING", "已发送停止控制"},
		Success:     []string{"SUCCESS", "成功"},
		TaskName:    []string{"TaskName:", "任务名:"},
		TaskToRun:   []string{"Task To Run:", "要运行的程序:"},
	}
}

// Sangfor returns the default target: the Sangfor endpoint agent.
func Sangfor() Target {
	return Target{
		Vendor: "sangfor",
		InstallPaths: []string{
			`Program Files\Sangfor`,
			`Program Files (x86)\Sangfor`,
		},
		WatchdogKeywords: []string{
			"watchdog", "monitor", "service", "guard", "protect", "daemon",
		},
		ExecutableExts:  []string{".exe"},
		OutputEncoding:  "gbk",
		Markers:         DefaultMarkers(),
		MonitorInterval: DefaultMonitorInterval,
		PhasePause:      1 * time.Second,
		Timeouts: Timeouts{
			List:     10 * time.Second,
			Query:    2 * time.Second,
			Action:   5 * time.Second,
			KillWait: 2 * time.Second,
			ExitWait: 1 * time.Second,
		},
	}
}

// Load reads a YAML override file on top of the Sangfor defaults. Only the
// matching policy (vendor, paths, keywords, markers, encoding) is
// file-configurable; cadence and timeouts are flag-level concerns.
func Load(path string) (Target, error) {
	t := Sangfor()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read target config: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse target config: %w", err)
	}
	if t.Vendor == "" {
		return t, fmt.Errorf("target config %s: vendor must not be empty", path)
	}
	t.Vendor = strings.ToLower(t.Vendor)
	return t, nil
}

// MatchesVendor reports whether s contains the vendor keyword,
// case-insensitively.
func (t Target) MatchesVendor(s string) bool {
	return strings.Contains(strings.ToLower(s), t.Vendor)
}

// IsWatchdogName reports whether a folded executable stem looks like a
// process supervisor.
func (t Target) IsWatchdogName(stem string) bool {
	stem = strings.ToLower(stem)
	for _, kw := range t.WatchdogKeywords {
		if strings.Contains(stem, kw) {
			return true
		}
	}
	return false
}

// IsExecutable reports whether the filename carries an executable extension.
func (t Target) IsExecutable(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range t.ExecutableExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
