// Package main is the CLI entry point for sfpurge.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sfpurge/internal/daemon"
	"sfpurge/internal/discovery"
	"sfpurge/internal/domain"
	"sfpurge/internal/infra"
	"sfpurge/internal/policy"
	"sfpurge/internal/ui"
	"sfpurge/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.3.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sfpurge",
	Short: "Forced removal tool for the Sangfor endpoint agent",
	Long: `sfpurge locates a Sangfor endpoint agent install on the local fixed
volumes, cuts its restart paths (kernel drivers, services, scheduled tasks),
then keeps killing agent processes as they respawn until interrupted.

Run it from an elevated shell; without admin rights most stop and kill
operations will be denied by the OS.`,
	Version: Version,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Suppress restart sources and kill agent processes until interrupted",
	Long: `Runs the full pipeline: discovery, restart-source suppression, then the
monitoring loop. The loop has no natural end; stop it with Ctrl-C. A closing
summary of everything killed and disabled prints on exit.`,
	RunE: runRun,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report the install and its restart sources without touching anything",
	Long: `Runs discovery only: locates install directories, collects executables,
and cross-references services, drivers, and scheduled tasks. Nothing is
stopped, disabled, or killed, so it is safe to run as a preview.`,
	RunE: runScan,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	configPath string
	interval   time.Duration
	noColor    bool
	jsonOutput bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML target override file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	runCmd.Flags().DurationVar(&interval, "interval", policy.DefaultMonitorInterval, "Monitoring pass cadence")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	target, err := loadTarget()
	if err != nil {
		return err
	}
	target.MonitorInterval = interval

	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	console := ui.NewConsole(os.Stdout, !noColor)
	printBanner(console)
	checkPrivileges(console)

	stats := &domain.Stats{}
	runner := infra.NewExecRunner(target.OutputEncoding, logger)
	sc := infra.NewServiceControl(runner, target, logger)
	ts := infra.NewScheduler(runner, target, logger)
	pm := infra.NewProcessManager(logger)

	pipeline := buildPipeline(target, console, logger, sc, ts)
	suppressor := usecase.NewSuppressor(sc, ts, console, logger, stats)
	terminator := usecase.NewTerminationEngine(pm, target, console, logger, stats)
	monitor := daemon.NewMonitor(target, pipeline, suppressor, terminator, console, logger, stats)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console.Infof("[*] press Ctrl-C to stop")
	if err := monitor.Run(ctx); err != nil {
		console.Warnf("[!] interrupted before discovery completed")
		return err
	}
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	target, err := loadTarget()
	if err != nil {
		return err
	}

	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	console := ui.NewConsole(os.Stdout, !noColor)
	printBanner(console)
	console.Infof("[*] scan mode: nothing will be stopped, disabled, or killed")

	runner := infra.NewExecRunner(target.OutputEncoding, logger)
	sc := infra.NewServiceControl(runner, target, logger)
	ts := infra.NewScheduler(runner, target, logger)
	pipeline := buildPipeline(target, console, logger, sc, ts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inv := pipeline.Discover(ctx)
	if len(inv.Directories) == 0 {
		console.Infof("[*] no %s install directory found on any fixed volume", target.Vendor)
	}
	return nil
}

func buildPipeline(target policy.Target, console *ui.Console, logger *zap.Logger, sc domain.ServiceController, ts domain.TaskScheduler) *discovery.Pipeline {
	volumes := infra.NewVolumeLister()
	return discovery.NewPipeline(
		discovery.NewLocator(volumes, target, console, logger),
		discovery.NewCollector(target, console, logger),
		discovery.NewServiceResolver(sc, target, console, logger),
		discovery.NewDriverResolver(sc, target, console, logger),
		discovery.NewTaskResolver(ts, target, console, logger),
		discovery.NewAnalyzer(console),
	)
}

func loadTarget() (policy.Target, error) {
	if configPath == "" {
		return policy.Sangfor(), nil
	}
	return policy.Load(configPath)
}

func printBanner(console *ui.Console) {
	console.Rule()
	console.Headerf("sfpurge %s - forced removal of the Sangfor endpoint agent", Version)
	console.Rule()
}

// checkPrivileges warns when the process is not elevated. Nothing is blocked:
// an unprivileged run still works for anything the OS happens to permit.
func checkPrivileges(console *ui.Console) {
	if infra.IsElevated() {
		console.Successf("[+] running with administrator privileges")
		return
	}
	console.Warnf("[!] not running as administrator; some processes and services may refuse to die")
	console.Warnf("[!] re-run from an elevated shell for full effect")
}

func createLogger() *zap.Logger {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		logger, _ := zap.NewProduction()
		return logger
	}
	name := filepath.Join("logs", fmt.Sprintf("sfpurge_%s.log", time.Now().Format("20060102_150405")))

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{name}
	config.ErrorOutputPaths = []string{name}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("sfpurge %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
