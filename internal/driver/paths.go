package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"tower/internal/project"
)

// ListWorldFiles expands paths into a sorted, duplicate-free list of world
// files. Directories are walked recursively for *.toml files; manifests
// named tower.toml are skipped. Files named explicitly are kept whatever
// their extension.
func ListWorldFiles(paths ...string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("world path %q: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".toml") && d.Name() != project.ManifestName {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return slices.Compact(files), nil
}
