//go:build integration

package integration

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"sfpurge/internal/daemon"
	"sfpurge/internal/discovery"
	"sfpurge/internal/domain"
	"sfpurge/internal/infra"
	"sfpurge/internal/policy"
	"sfpurge/internal/ui"
	"sfpurge/internal/usecase"
)

const serviceListing = `
SERVICE_NAME: SangforEDR
DISPLAY_NAME: Sangfor Endpoint Secure
        TYPE               : 10  WIN32_OWN_PROCESS
        STATE              : 4  RUNNING

SERVICE_NAME: Spooler
DISPLAY_NAME: Print Spooler
        TYPE               : 110  WIN32_OWN_PROCESS (interactive)
        STATE              : 4  RUNNING
`

const driverListing = `
SERVICE_NAME: SangforNetFilter
DISPLAY_NAME: Sangfor Network Filter Driver
        TYPE               : 1  KERNEL_DRIVER
        STATE              : 4  RUNNING
`

const taskListing = `
Folder: \
HostName:      DESKTOP-TEST
TaskName:      \SangforUpdateTask
Status:        Ready
Task To Run:   C:\Program Files\Sangfor\agentui.exe
`

var _ = Describe("Purge pipeline", func() {
	var (
		tmpDir  string
		target  policy.Target
		console *ui.Console
		logger  *zap.Logger
		runner  *scriptedRunner
		stats   *domain.Stats
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "sfpurge-integration-*")
		Expect(err).NotTo(HaveOccurred())

		target = policy.Sangfor()
		target.InstallPaths = []string{"Program Files/Sangfor"}
		target.MonitorInterval = 5 * time.Millisecond
		target.PhasePause = 0

		console = ui.NewConsole(io.Discard, false)
		logger = zap.NewNop()
		stats = &domain.Stats{}

		runner = newScriptedRunner()
		runner.serviceListing = serviceListing
		runner.driverListing = driverListing
		runner.taskListing = taskListing
		runner.binaryPaths["Spooler"] = `C:\Windows\System32\spoolsv.exe`
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	buildPipeline := func(sc domain.ServiceController, ts domain.TaskScheduler) *discovery.Pipeline {
		volumes := &fakeVolumes{roots: []string{tmpDir}}
		return discovery.NewPipeline(
			discovery.NewLocator(volumes, target, console, logger),
			discovery.NewCollector(target, console, logger),
			discovery.NewServiceResolver(sc, target, console, logger),
			discovery.NewDriverResolver(sc, target, console, logger),
			discovery.NewTaskResolver(ts, target, console, logger),
			discovery.NewAnalyzer(console),
		)
	}

	writeInstall := func(names ...string) {
		dir := filepath.Join(tmpDir, "Program Files", "Sangfor")
		Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
		for _, name := range names {
			Expect(os.WriteFile(filepath.Join(dir, name), []byte("bin"), 0o755)).To(Succeed())
		}
	}

	Describe("Discovery", func() {
		Context("when an install with restart sources exists", func() {
			It("builds the full inventory without touching system state", func() {
				writeInstall("agentwatchdog.exe", "agentui.exe", "readme.txt")

				sc := infra.NewServiceControl(runner, target, logger)
				ts := infra.NewScheduler(runner, target, logger)
				inv := buildPipeline(sc, ts).Discover(context.Background())

				Expect(inv.Directories).To(HaveLen(1))
				Expect(inv.Executables).To(HaveLen(2))
				Expect(inv.Executables["agentwatchdog"].IsWatchdog).To(BeTrue())
				Expect(inv.Executables["agentui"].IsWatchdog).To(BeFalse())

				Expect(serviceNames(inv)).To(ConsistOf("SangforEDR"))
				Expect(driverNames(inv)).To(ConsistOf("SangforNetFilter"))
				Expect(taskNames(inv)).To(ConsistOf(`\SangforUpdateTask`))

				// Discovery is read-only: no stop, config, or task changes.
				for _, call := range runner.callLog() {
					Expect(call).NotTo(ContainSubstring("sc stop"))
					Expect(call).NotTo(ContainSubstring("sc config"))
					Expect(call).NotTo(ContainSubstring("/change"))
				}
			})
		})

		Context("when no install directory exists", func() {
			It("returns an empty inventory and skips all registry queries", func() {
				sc := infra.NewServiceControl(runner, target, logger)
				ts := infra.NewScheduler(runner, target, logger)
				inv := buildPipeline(sc, ts).Discover(context.Background())

				Expect(inv.Directories).To(BeEmpty())
				Expect(inv.Executables).To(BeEmpty())
				Expect(inv.Services).To(BeEmpty())
				Expect(runner.callLog()).To(BeEmpty())
			})
		})
	})

	Describe("Full run", func() {
		Context("when the agent has a watchdog, a service, a driver, and a task", func() {
			It("suppresses restart sources then kills watchdogs before ordinary processes", func() {
				writeInstall("agentwatchdog.exe", "agentui.exe")

				pm := newFakeProcessManager(
					domain.ProcessRecord{PID: 400, ParentPID: 120, Name: "agentui.exe"},
					domain.ProcessRecord{PID: 120, ParentPID: 1, Name: "agentwatchdog.exe"},
					domain.ProcessRecord{PID: 999, ParentPID: 1, Name: "explorer.exe"},
				)

				sc := infra.NewServiceControl(runner, target, logger)
				ts := infra.NewScheduler(runner, target, logger)
				suppressor := usecase.NewSuppressor(sc, ts, console, logger, stats)
				terminator := usecase.NewTerminationEngine(pm, target, console, logger, stats)
				monitor := daemon.NewMonitor(target, buildPipeline(sc, ts), suppressor, terminator, console, logger, stats)

				ctx, cancel := context.WithCancel(context.Background())
				errCh := make(chan error, 1)
				go func() { errCh <- monitor.Run(ctx) }()

				Eventually(pm.killedPIDs, 2*time.Second).Should(HaveLen(2))
				cancel()
				Eventually(errCh, 2*time.Second).Should(Receive(BeNil()))

				// Watchdog dies first, then the ordinary process. The
				// unrelated explorer.exe survives.
				Expect(pm.killedPIDs()).To(Equal([]int32{120, 400}))

				// Suppression order: drivers, then services, then tasks.
				calls := runner.callLog()
				Expect(callIndex(calls, "sc stop SangforNetFilter")).To(BeNumerically("<", callIndex(calls, "sc stop SangforEDR")))
				Expect(callIndex(calls, "sc stop SangforEDR")).To(BeNumerically("<", callIndex(calls, "sc config SangforEDR start= disabled")))
				Expect(callIndex(calls, "sc config SangforEDR start= disabled")).To(BeNumerically("<", callIndex(calls, `schtasks /change /tn \SangforUpdateTask /disable`)))

				Expect(stats.ProcessesKilled).To(Equal(2))
				Expect(stats.ServicesStopped).To(Equal(1))
				Expect(stats.ServicesDisabled).To(Equal(1))
				Expect(stats.DriversDisabled).To(Equal(1))
				Expect(stats.TasksDisabled).To(Equal(1))
				Expect(monitor.Phase()).To(Equal(daemon.PhaseStopped))
			})
		})

		Context("when nothing is installed", func() {
			It("stops cleanly without running a single command", func() {
				pm := newFakeProcessManager()

				sc := infra.NewServiceControl(runner, target, logger)
				ts := infra.NewScheduler(runner, target, logger)
				suppressor := usecase.NewSuppressor(sc, ts, console, logger, stats)
				terminator := usecase.NewTerminationEngine(pm, target, console, logger, stats)
				monitor := daemon.NewMonitor(target, buildPipeline(sc, ts), suppressor, terminator, console, logger, stats)

				Expect(monitor.Run(context.Background())).To(Succeed())
				Expect(runner.callLog()).To(BeEmpty())
				Expect(pm.killedPIDs()).To(BeEmpty())
				Expect(*stats).To(Equal(domain.Stats{}))
			})
		})
	})
})

func serviceNames(inv *domain.Inventory) []string {
	out := make([]string, 0, len(inv.Services))
	for _, s := range inv.Services {
		out = append(out, s.Name)
	}
	return out
}

func driverNames(inv *domain.Inventory) []string {
	out := make([]string, 0, len(inv.Drivers))
	for _, d := range inv.Drivers {
		out = append(out, d.Name)
	}
	return out
}

func taskNames(inv *domain.Inventory) []string {
	out := make([]string, 0, len(inv.Tasks))
	for _, t := range inv.Tasks {
		out = append(out, t.Name)
	}
	return out
}

func callIndex(calls []string, want string) int {
	for i, c := range calls {
		if strings.HasPrefix(c, want) {
			return i
		}
	}
	return -1
}
