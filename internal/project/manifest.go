// Package project reads lumen.toml, the per-project build manifest.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the manifest file looked up from the working directory
// upward.
const ManifestName = "lumen.toml"

// Manifest is a parsed lumen.toml plus its location.
type Manifest struct {
	Path   string // manifest file path
	Root   string // directory containing it
	Config Config
}

// Config mirrors the manifest's TOML structure.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
}

// PackageConfig is the [package] section.
type PackageConfig struct {
	Name string `toml:"name"`
}

// BuildConfig is the [build] section.
type BuildConfig struct {
	// Target is an abstract triple like "x86_64-linux-gnu"; empty or
	// "native" means the host.
	Target string `toml:"target"`
	// Profile is "debug" or "release".
	Profile string `toml:"profile"`
	// Output overrides the object file name.
	Output string `toml:"output"`
}

// ErrPackageSectionMissing indicates that [package] has no name.
var ErrPackageSectionMissing = errors.New("missing [package].name")

// Find walks from startDir toward the filesystem root looking for the
// manifest. Returns found=false when no directory on the way has one.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and parses the nearest manifest. The boolean reports
// whether one was found at all; an unfound manifest is not an error.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, false, err
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg.Package.Name == "" {
		return nil, false, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if cfg.Build.Profile == "" {
		cfg.Build.Profile = "debug"
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}
