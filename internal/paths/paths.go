// Package paths centralizes file and directory names used across the project.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Working-directory relative names.
const (
	AssetDir   = "notes"
	ConfigFile = "notestrip.toml"
	BinaryName = "notestrip"
)

// DefaultConfigFile is the generated example config at the repo root,
// embedded into the binary.
const DefaultConfigFile = "config.default.toml"

// ///////////////////////////////////////////////
// WorkDir
// ///////////////////////////////////////////////

// WorkDir provides path construction rooted at the directory notestrip runs in.
type WorkDir struct {
	Root string
}

// Assets returns the default asset directory.
func (d WorkDir) Assets() string { return filepath.Join(d.Root, AssetDir) }

// Config returns the default config file path.
func (d WorkDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Resolve joins p onto Root unless p is already absolute.
func (d WorkDir) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.Root, p)
}
