package main

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tower/internal/project"
	"tower/internal/version"
)

// errFailed is returned after results were printed; main only sets the
// exit code for it.
var errFailed = errors.New("resolution failed")

// logger prints status and warning lines on stderr.
var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "tower"})

var rootCmd = &cobra.Command{
	Use:   "tower",
	Short: "Call resolution tower for world files",
	Long: `tower resolves call sites described in TOML world files the way a Kotlin
front end walks its tower of scope levels, and reports what every call
resolves to.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRun,
}

// main registers subcommands and persistent flags and runs the root command.
// Cleanup runs on every path because PersistentPostRun is skipped on error.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("path-mode", "auto", "how file paths are printed (auto|absolute|relative|basename)")

	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")

	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")

	err := rootCmd.Execute()
	runCleanup()
	if err != nil {
		if !errors.Is(err, errFailed) {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}
}

// setupRun applies global flags before any subcommand runs.
func setupRun(cmd *cobra.Command, args []string) error {
	flags := cmd.Root().PersistentFlags()
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return err
	}
	if quiet {
		logger.SetLevel(log.WarnLevel)
	}
	useColor, err := colorEnabled(cmd)
	if err != nil {
		return err
	}
	color.NoColor = !useColor

	var manifest *project.Manifest
	if cmd != initCmd && cmd != versionCmd {
		if manifest, err = loadManifest(args); err != nil {
			return err
		}
		currentManifest = manifest
	}
	traceCleanup, err := setupTracing(cmd, manifest)
	if err != nil {
		return err
	}
	addCleanup(traceCleanup)
	profCleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	addCleanup(profCleanup)
	return nil
}

var cleanups []func()

func addCleanup(fn func()) {
	cleanups = append(cleanups, fn)
}

// runCleanup runs registered cleanups in reverse order.
func runCleanup() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

func colorEnabled(cmd *cobra.Command) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	mode, err := readMode("color", colorFlag)
	if err != nil {
		return false, err
	}
	return shouldUseTUI(mode), nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
