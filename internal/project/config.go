package project

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"tower/internal/trace"
)

// Config is the content of tower.toml.
type Config struct {
	Resolve ResolveConfig `toml:"resolve"`
	Driver  DriverConfig  `toml:"driver"`
	Trace   TraceConfig   `toml:"trace"`
}

type ResolveConfig struct {
	// HidesMembers lists names whose extensions win over members.
	HidesMembers []string `toml:"hides_members"`
}

type DriverConfig struct {
	Worlds    string `toml:"worlds"` // directory of world files, relative to the manifest
	Jobs      int    `toml:"jobs"`
	DiskCache bool   `toml:"disk_cache"`
	CacheDir  string `toml:"cache_dir"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"` // stream, ring, both
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Manifest is a loaded tower.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
	meta   toml.MetaData
}

// Defined reports whether key was set in the file.
func (m *Manifest) Defined(key ...string) bool {
	return m != nil && m.meta.IsDefined(key...)
}

// WorldsDir returns the absolute worlds directory.
func (m *Manifest) WorldsDir() string {
	dir := m.Config.Driver.Worlds
	if dir == "" {
		dir = "worlds"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(m.Root, filepath.FromSlash(dir))
}

// Default returns the configuration used without a manifest.
func Default() Config {
	return Config{
		Resolve: ResolveConfig{HidesMembers: []string{"forEach"}},
		Driver:  DriverConfig{Worlds: "worlds"},
		Trace:   TraceConfig{Level: "off", Mode: "stream", Format: "auto", Output: "-"},
	}
}

// LoadManifest finds tower.toml above startDir and loads it. ok is false
// when there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindTowerToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load decodes and validates the manifest at path on top of Default.
func Load(path string) (*Manifest, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg, meta: meta}, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Driver.Jobs < 0 {
		errs = append(errs, fmt.Errorf("[driver].jobs must be >= 0, got %d", c.Driver.Jobs))
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		errs = append(errs, fmt.Errorf("[trace].level: %w", err))
	}
	if !slices.Contains([]string{"stream", "ring", "both"}, c.Trace.Mode) {
		errs = append(errs, fmt.Errorf("[trace].mode must be stream, ring or both, got %q", c.Trace.Mode))
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		errs = append(errs, fmt.Errorf("[trace].format: %w", err))
	}
	for _, name := range c.Resolve.HidesMembers {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("[resolve].hides_members contains an empty name"))
		}
	}
	return errors.Join(errs...)
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# tower project manifest\n")
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}
