package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"tower/internal/diagfmt"
	"tower/internal/driver"
	"tower/internal/project"
)

func TestInitProjectResolvesCleanly(t *testing.T) {
	root := filepath.Join(t.TempDir(), "demo")
	created, err := initProject(root)
	if err != nil {
		t.Fatalf("initProject error: %v", err)
	}
	if diff := cmp.Diff([]string{project.ManifestName, sampleWorldName}, created); diff != "" {
		t.Fatalf("created files mismatch (-want +got):\n%s", diff)
	}
	if _, err := initProject(root); err == nil {
		t.Fatalf("expected a second init to fail")
	}

	manifest, ok, err := project.LoadManifest(root)
	if err != nil || !ok {
		t.Fatalf("expected a valid manifest, got ok=%v err=%v", ok, err)
	}
	_, results, err := driver.ResolvePaths(t.Context(), []string{manifest.WorldsDir()}, driver.Options{
		HidesMembers: manifest.Config.Resolve.HidesMembers,
	})
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 world, got %d", len(results))
	}
	sample := results[0]
	if sample.Bag.Len() != 0 || sample.Mismatches() != 0 || len(sample.Calls) != 5 {
		t.Fatalf("expected a clean sample world, got %d diagnostics %+v", sample.Bag.Len(), sample.Calls)
	}
}

func TestInitProjectRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := initProject(path); err == nil {
		t.Fatalf("expected an error for a regular file")
	}
}

func TestReadMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readMode("ui", in)
		if err != nil || got != want {
			t.Fatalf("readMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readMode("color", "always"); err == nil || !strings.Contains(err.Error(), "--color") {
		t.Fatalf("expected an error naming the flag, got %v", err)
	}
}

func TestReadResolveSettings(t *testing.T) {
	cmd := &cobra.Command{Use: "resolve"}
	registerResolveFlags(cmd)
	manifest := &project.Manifest{Root: "/proj", Config: project.Default()}
	manifest.Config.Driver.Jobs = 2
	manifest.Config.Driver.CacheDir = ".cache"

	s, err := readResolveSettings(cmd, nil, manifest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := resolveSettings{
		Paths:        []string{filepath.Join("/proj", "worlds")},
		Jobs:         2,
		HidesMembers: []string{"forEach"},
		CacheDir:     filepath.Join("/proj", ".cache"),
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}

	for name, value := range map[string]string{"jobs": "4", "disk-cache": "true", "hides-members": "map,filter"} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	s, err = readResolveSettings(cmd, []string{"a.toml"}, manifest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = resolveSettings{
		Paths:        []string{"a.toml"},
		Jobs:         4,
		HidesMembers: []string{"map", "filter"},
		DiskCache:    true,
		CacheDir:     filepath.Join("/proj", ".cache"),
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestPrintWorldsPretty(t *testing.T) {
	color.NoColor = true
	fs, results, err := driver.ResolvePaths(t.Context(), []string{filepath.Join("..", "..", "internal", "driver", "testdata", "mismatch.toml")}, driver.Options{})
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	var buf bytes.Buffer
	printWorldsPretty(&buf, fs, results, printOpts{OnlyFailures: true, Diagnostics: diagfmt.PrettyOpts{PathMode: diagfmt.PathModeBasename}})
	out := buf.String()
	for _, want := range []string{
		"mismatch.toml: 2 calls",
		"FAIL  wrong      f -> app.f at Top(0)",
		"        group: expected Top(1), got Top(0)",
		"FAIL  unchecked  absent -> unresolved",
		"RES2001",
		"1 worlds, 2 calls, 2 failed, 1 mismatched",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	s := summarizeBatch(results)
	if s.Failed != 1 || s.FailedCall != 2 {
		t.Fatalf("unexpected summary %+v", s)
	}
}
