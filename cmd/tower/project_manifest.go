package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tower/internal/driver"
	"tower/internal/project"
)

// currentManifest is the tower.toml found for the running command, if any.
var currentManifest *project.Manifest

// loadManifest looks for tower.toml above the first path argument, or above
// the working directory when there is none.
func loadManifest(args []string) (*project.Manifest, error) {
	start := "."
	if len(args) > 0 {
		start = args[0]
		if st, err := os.Stat(start); err == nil && !st.IsDir() {
			start = filepath.Dir(start)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %q: %w", start, err)
		}
	}
	manifest, _, err := project.LoadManifest(start)
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

// resolveSettings is the resolution configuration after flags were applied
// on top of the manifest.
type resolveSettings struct {
	Paths        []string
	Jobs         int
	HidesMembers []string
	DiskCache    bool
	CacheDir     string
}

func registerResolveFlags(cmd *cobra.Command) {
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().Bool("disk-cache", false, "reuse results of unchanged world files across runs")
	cmd.Flags().StringSlice("hides-members", nil, "names whose extensions win over members (replaces the manifest list)")
}

// readResolveSettings merges command flags with the manifest. Paths default
// to the worlds directory of the manifest, or the working directory.
func readResolveSettings(cmd *cobra.Command, args []string, manifest *project.Manifest) (resolveSettings, error) {
	cfg := project.Default()
	if manifest != nil {
		cfg = manifest.Config
	}
	s := resolveSettings{
		Paths:        args,
		Jobs:         cfg.Driver.Jobs,
		HidesMembers: cfg.Resolve.HidesMembers,
		DiskCache:    cfg.Driver.DiskCache,
		CacheDir:     cfg.Driver.CacheDir,
	}
	if len(s.Paths) == 0 {
		s.Paths = []string{"."}
		if manifest != nil {
			s.Paths = []string{manifest.WorldsDir()}
		}
	}
	if s.CacheDir != "" && manifest != nil && !filepath.IsAbs(s.CacheDir) {
		s.CacheDir = filepath.Join(manifest.Root, s.CacheDir)
	}

	flags := cmd.Flags()
	if flags.Changed("jobs") {
		jobs, err := flags.GetInt("jobs")
		if err != nil {
			return s, fmt.Errorf("failed to get jobs flag: %w", err)
		}
		if jobs < 0 {
			return s, fmt.Errorf("--jobs must be >= 0, got %d", jobs)
		}
		s.Jobs = jobs
	}
	if flags.Changed("disk-cache") {
		enabled, err := flags.GetBool("disk-cache")
		if err != nil {
			return s, fmt.Errorf("failed to get disk-cache flag: %w", err)
		}
		s.DiskCache = enabled
	}
	if flags.Changed("hides-members") {
		names, err := flags.GetStringSlice("hides-members")
		if err != nil {
			return s, fmt.Errorf("failed to get hides-members flag: %w", err)
		}
		s.HidesMembers = names
	}
	return s, nil
}

// driverOptions builds driver options from settings and global flags.
func driverOptions(cmd *cobra.Command, s resolveSettings) (driver.Options, error) {
	root := cmd.Root().PersistentFlags()
	maxDiagnostics, err := root.GetInt("max-diagnostics")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := root.GetBool("timings")
	if err != nil {
		return driver.Options{}, fmt.Errorf("failed to get timings flag: %w", err)
	}
	opts := driver.Options{
		Jobs:           s.Jobs,
		MaxDiagnostics: maxDiagnostics,
		HidesMembers:   s.HidesMembers,
		Timings:        showTimings,
	}
	if s.DiskCache {
		var cache *driver.DiskCache
		if s.CacheDir != "" {
			cache, err = driver.OpenDiskCacheAt(s.CacheDir)
		} else {
			cache, err = driver.OpenDiskCache("tower")
		}
		if err != nil {
			logger.Warn("disk cache disabled", "error", err)
		} else {
			opts.Cache = cache
			logger.Debug("using disk cache", "dir", cache.Dir())
		}
	}
	return opts, nil
}
