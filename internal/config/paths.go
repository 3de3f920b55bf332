// Package config manages modimport configuration and filesystem paths.
//
// modimport keeps its own data under a single root (default ~/.modimport)
// containing the target catalog (data/), one directory per import run
// (imports/) and the settings file (config.yaml). The legacy manager's
// per-user base directory is resolved separately because it belongs to
// another program and is only ever read.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName is the application name.
	AppName = "modimport"

	// LegacyVendorDir is the legacy manager vendor's directory under the
	// per-user local application data folder.
	LegacyVendorDir = "Black_Tree_Gaming"
)

// Paths contains all the filesystem paths used by modimport.
type Paths struct {
	// Root is the base directory for all modimport data (default: ~/.modimport)
	Root string

	// Data holds the target platform catalog (mods, downloads, profiles)
	Data string

	// Imports holds one trace directory per import run
	Imports string

	// Config is the path to the settings file
	Config string
}

// DefaultPaths returns the default paths for modimport.
// Paths can be overridden with environment variables:
// - MODIMPORT_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("MODIMPORT_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, "."+AppName)
	}
	return PathsAt(root), nil
}

// PathsAt returns the layout rooted at root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:    root,
		Data:    filepath.Join(root, "data"),
		Imports: filepath.Join(root, "imports"),
		Config:  filepath.Join(root, "config.yaml"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Root, p.Data, p.Imports} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LegacyBaseDir returns the directory the legacy manager keeps its per-user
// settings in: <local app data>/Black_Tree_Gaming.
//
// On Windows local app data is %LOCALAPPDATA% (falling back to
// %USERPROFILE%\AppData\Local). Elsewhere, where the legacy manager usually
// lives inside a compatibility prefix, $XDG_DATA_HOME or ~/.local/share
// stands in for it.
func LegacyBaseDir() (string, error) {
	var local string

	switch runtime.GOOS {
	case "windows":
		local = os.Getenv("LOCALAPPDATA")
		if local == "" {
			local = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
	default:
		local = os.Getenv("XDG_DATA_HOME")
		if local == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			local = filepath.Join(home, ".local", "share")
		}
	}

	return filepath.Join(local, LegacyVendorDir), nil
}
