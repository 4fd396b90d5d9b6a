// Package manifest handles hydor.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a hydor.toml project configuration.
type Manifest struct {
	Project Project     `toml:"project"`
	Source  Source      `toml:"source"`
	Build   BuildConfig `toml:"build"`
	VM      VMConfig    `toml:"vm"`

	// Dir is the directory containing the hydor.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures source file locations.
type Source struct {
	Dirs  []string `toml:"dirs"`
	Entry string   `toml:"entry"`
}

// BuildConfig configures compile output.
type BuildConfig struct {
	Output    string `toml:"output"`     // directory for .hydc output, default "build"
	DebugInfo bool   `toml:"debug-info"` // emit .hydd sidecars
	Cache     bool   `toml:"cache"`      // use the compile cache
}

// VMConfig configures execution.
type VMConfig struct {
	// MaxStack overrides the operand stack limit when positive.
	MaxStack int `toml:"max-stack"`
}

// Load parses a hydor.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "hydor.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if m.Build.Output == "" {
		m.Build.Output = "build"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a hydor.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "hydor.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// EntryPath resolves the configured entry file against the source
// directories, returning the first path that exists. When the entry sits
// in none of them the manifest directory itself is tried. Returns ""
// when no entry is configured.
func (m *Manifest) EntryPath() string {
	if m.Source.Entry == "" {
		return ""
	}
	for _, dir := range m.SourceDirPaths() {
		p := filepath.Join(dir, m.Source.Entry)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(m.Dir, m.Source.Entry)
}

// OutputDir returns the absolute path of the build output directory.
func (m *Manifest) OutputDir() string {
	return filepath.Join(m.Dir, m.Build.Output)
}

// CachePath returns the path to the .hydor/cache.db compile cache.
func (m *Manifest) CachePath() string {
	return filepath.Join(m.Dir, ".hydor", "cache.db")
}
