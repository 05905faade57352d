package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tower/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a new tower project",
	Long: `Initialize a new tower project by creating a project manifest (tower.toml)
and a sample world (worlds/sample.toml). If [path] is omitted, initializes the
current directory. A missing directory is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// sampleWorldName is the sample world path relative to the project root.
const sampleWorldName = "worlds/sample.toml"

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	created, err := initProject(target)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized tower project in %s\n", target)
	for _, name := range created {
		fmt.Fprintf(out, "  - %s\n", name)
	}
	return nil
}

// initProject writes tower.toml and, unless present, the sample world into
// target. It refuses to overwrite an existing manifest and returns the
// created paths relative to target.
func initProject(target string) ([]string, error) {
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := os.MkdirAll(target, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return nil, fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	manifest, err := project.Default().Encode()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(manifestPath, manifest, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	created := []string{project.ManifestName}

	samplePath := filepath.Join(target, filepath.FromSlash(sampleWorldName))
	if _, err := os.Stat(samplePath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(samplePath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create worlds directory: %w", err)
		}
		if err := os.WriteFile(samplePath, []byte(sampleWorld), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write sample world: %w", err)
		}
		created = append(created, sampleWorldName)
	}
	return created, nil
}

// sampleWorld shows each kind of tower level: a local function, a member of
// an implicit receiver, a top-level function and an invoke on a property.
const sampleWorld = `# Sample world: declarations, contexts and the calls to resolve.
package = "app"

[[class]]
name = "Int"

[[class]]
name = "A"

[[fun]]
name = "f"
params = ["x: Int"]

[[fun]]
name = "f"
local = "body"
params = ["x: Int"]

[[fun]]
name = "g"
class = "A"

[[fun]]
name = "h"

[[property]]
name = "p"
type = "(Int) -> Unit"

[[local]]
name = "body"

[[context]]
name = "main"
locals = ["body"]
receivers = [{ dispatch = "A" }]

[[context]]
name = "plain"

[[call]]
id = "local"
name = "f"
args = ["literal"]
expect = "body::f"
group = "Local(0)"

[[call]]
id = "member"
name = "g"
expect = "app.A.g"
group = "Implicit(0).Member"

[[call]]
id = "top"
name = "h"
expect = "app.h"
group = "Top(0)"

[[call]]
id = "invoke"
context = "plain"
name = "p"
args = ["literal"]
expect = "invoke"

[[call]]
id = "missing"
name = "nope"
outcome = "unresolved"
`
