package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFindTowerTomlWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "")
	nested := filepath.Join(root, "worlds", "deep")
	writeFile(t, filepath.Join(nested, "w.toml"), "")

	for _, start := range []string{nested, filepath.Join(nested, "w.toml"), root} {
		got, ok, err := FindProjectRoot(start)
		if err != nil || !ok {
			t.Fatalf("%s: expected a project root, got ok=%v err=%v", start, ok, err)
		}
		if got != root {
			t.Fatalf("expected %s, got %s", root, got)
		}
	}
}

func TestFindTowerTomlMissing(t *testing.T) {
	dir := t.TempDir()
	if _, ok, err := FindTowerToml(dir); err != nil || ok {
		t.Fatalf("expected no manifest, got ok=%v err=%v", ok, err)
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, `
[resolve]
hides_members = ["forEach", "onEach"]

[driver]
jobs = 4
worlds = "cases"
`)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Default()
	want.Resolve.HidesMembers = []string{"forEach", "onEach"}
	want.Driver.Jobs = 4
	want.Driver.Worlds = "cases"
	if diff := cmp.Diff(want, m.Config); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if !m.Defined("driver", "jobs") || m.Defined("trace", "level") {
		t.Fatalf("unexpected Defined results")
	}
	if got := m.WorldsDir(); got != filepath.Join(dir, "cases") {
		t.Fatalf("expected worlds dir under the root, got %s", got)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, `
[driver]
jobs = -1
colour = true

[trace]
level = "loud"
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unknown keys: driver.colour") {
		t.Fatalf("expected unknown key error, got %v", err)
	}

	writeFile(t, path, "[driver]\njobs = -1\n[trace]\nlevel = \"loud\"\nmode = \"tape\"\n")
	_, err = Load(path)
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, part := range []string{"[driver].jobs", "[trace].level", "[trace].mode"} {
		if !strings.Contains(err.Error(), part) {
			t.Fatalf("expected %q in %v", part, err)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data, err := Default().Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, string(data))
	m, err := Load(path)
	if err != nil {
		t.Fatalf("load encoded default: %v", err)
	}
	if diff := cmp.Diff(Default(), m.Config); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCombineIsOrderSensitive(t *testing.T) {
	a, b := HashStrings("a"), HashStrings("b")
	if Combine(a, b) == Combine(b, a) {
		t.Fatalf("expected different digests for different orders")
	}
	if HashStrings("ab") == HashStrings("a", "b") {
		t.Fatalf("separators must keep parts apart")
	}
}
