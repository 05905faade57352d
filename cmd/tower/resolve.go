package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tower/internal/diagfmt"
	"tower/internal/driver"
	"tower/internal/source"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] [world.toml|directory]...",
	Short: "Resolve every call site of world files",
	Long: `Resolve every call site of the given world files, or of all *.toml files
within the given directories, and print what each call resolves to. Without
arguments the worlds directory of tower.toml is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd, args, false)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [flags] [world.toml|directory]...",
	Short: "Check that calls resolve as their world files expect",
	Long: `Resolve world files like resolve does, print only the calls that fail or
differ from their expectation, and exit with a non-zero status if there are
any.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd, args, true)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{resolveCmd, checkCmd} {
		registerResolveFlags(cmd)
		cmd.Flags().String("format", "pretty", "output format (pretty|json)")
		cmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
		cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
		cmd.Flags().Bool("preview", false, "show source lines under diagnostics")
	}
}

// runResolve executes resolve and check. check hides calls that passed and
// turns failures into a non-zero exit status; resolve only fails when a
// world has errors.
func runResolve(cmd *cobra.Command, args []string, check bool) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readMode("ui", uiFlag)
	if err != nil {
		return err
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	pathModeFlag, err := cmd.Root().PersistentFlags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, ok := diagfmt.ParsePathMode(pathModeFlag)
	if !ok {
		return fmt.Errorf("unknown path mode: %s", pathModeFlag)
	}

	settings, err := readResolveSettings(cmd, args, currentManifest)
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, settings)
	if err != nil {
		return err
	}

	var (
		fs      *source.FileSet
		results []driver.WorldResult
	)
	if format == "pretty" && shouldUseTUI(mode) {
		fs, results, err = resolveWithUI(cmd.Context(), cmd.Name(), settings.Paths, opts)
	} else {
		fs, results, err = driver.ResolvePaths(cmd.Context(), settings.Paths, opts)
	}
	if err != nil {
		return err
	}
	if len(results) == 0 {
		logger.Warn("no world files found", "paths", settings.Paths)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		}
		if err := writeWorldsJSON(out, fs, results, jsonOpts); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	default:
		printWorldsPretty(out, fs, results, printOpts{
			OnlyFailures: check,
			Diagnostics: diagfmt.PrettyOpts{
				Color:       !color.NoColor,
				Context:     2,
				PathMode:    pathMode,
				ShowNotes:   withNotes || check,
				ShowPreview: preview,
			},
		})
	}

	summary := summarizeBatch(results)
	if summary.Failed > 0 || (check && summary.FailedCall > 0) {
		return errFailed
	}
	return nil
}
