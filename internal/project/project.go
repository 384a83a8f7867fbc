// Package project locates and parses the workspace manifest (cre.toml).
// The manifest marks the workspace root, which spatial scoring uses to
// decide whether two paths belong to the same project.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// ManifestFile is the workspace manifest filename.
const ManifestFile = "cre.toml"

// Manifest describes a workspace.
type Manifest struct {
	// Name is the workspace name
	Name string `toml:"name"`

	// Language is the workspace's primary language, used as the active
	// language when a query does not supply one
	Language string `toml:"language,omitempty"`

	// Ignore lists directory names skipped during proximity walks
	Ignore []string `toml:"ignore,omitempty"`
}

// Info is a located workspace: the manifest plus the directory holding it.
type Info struct {
	Root     string
	Manifest Manifest
}

// DefaultManifest returns a starter manifest.
func DefaultManifest(name string) *Manifest {
	return &Manifest{
		Name:   name,
		Ignore: []string{".git", ".cre", "node_modules", "vendor", "build", "dist"},
	}
}

// Load parses the manifest at the given path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ManifestFile, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
	}

	return &m, nil
}

// Write writes the manifest to the given path.
func Write(path string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", ManifestFile, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ManifestFile, err)
	}

	return nil
}

// Find walks upward from startDir looking for a cre.toml. Returns
// (nil, nil) when no manifest exists on the path to the filesystem root.
func Find(startDir string) (*Info, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		candidate := filepath.Join(dir, ManifestFile)
		if _, err := os.Stat(candidate); err == nil {
			m, err := Load(candidate)
			if err != nil {
				return nil, err
			}
			return &Info{Root: dir, Manifest: *m}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Contains reports whether path lies under the workspace root.
// Relative paths are interpreted against the root.
func (i *Info) Contains(path string) bool {
	if i == nil {
		return false
	}
	if !filepath.IsAbs(path) {
		return !strings.HasPrefix(filepath.ToSlash(filepath.Clean(path)), "../")
	}

	rel, err := filepath.Rel(i.Root, path)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(filepath.ToSlash(rel), "../") && rel != ".."
}

// Ignored reports whether a directory name is excluded by the manifest.
// An empty ignore list falls back to the defaults.
func (i *Info) Ignored(name string) bool {
	ignore := i.Manifest.Ignore
	if len(ignore) == 0 {
		ignore = DefaultManifest("").Ignore
	}
	for _, ig := range ignore {
		if name == ig {
			return true
		}
	}
	return false
}
