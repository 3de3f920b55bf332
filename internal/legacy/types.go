// Package legacy reads a legacy mod manager installation without modifying it.
//
// It locates installations on disk, extracts the roots an installation keeps
// its files under, parses the virtual mod configuration into mod records and
// enhances those records with metadata recovered from the per-mod cache.
//
// Key components:
//   - ParseInstanceRoots: settings document to InstanceRoots
//   - Reader.FindInstances: discovery and case-insensitive deduplication
//   - ParseVirtualModConfig: VirtualModConfig.xml to RawModEntry records
//   - Reader.Enhance: RawModEntry to ModEntry, the only way to obtain one
package legacy

import (
	"path/filepath"
	"strings"

	"github.com/danieljhkim/modimport/internal/fsops"
)

// InstanceRoots are the three filesystem roots of one legacy installation.
type InstanceRoots struct {
	// VirtualPath is the staging root; VirtualInstall lives beneath it
	VirtualPath string `json:"virtualPath"`

	// LinkPath is the hard-link folder root, empty if not configured
	LinkPath string `json:"linkPath"`

	// ModsPath is the raw mods folder holding archives and the cache
	ModsPath string `json:"modsPath"`
}

// VirtualInstallDir is the directory unpacked mod files are staged in.
func (r InstanceRoots) VirtualInstallDir() string {
	return filepath.Join(r.VirtualPath, "VirtualInstall")
}

// VirtualConfigPath is the path of the installation's VirtualModConfig.xml.
func (r InstanceRoots) VirtualConfigPath() string {
	return filepath.Join(r.VirtualInstallDir(), "VirtualModConfig.xml")
}

// LinkDir is the per-game hard-link directory, or "" without a LinkPath.
func (r InstanceRoots) LinkDir(gameID string) string {
	if r.LinkPath == "" {
		return ""
	}
	return filepath.Join(r.LinkPath, gameID, "NMMLink")
}

// FileEntry is one file a mod deployed through the virtual install.
type FileEntry struct {
	// Source is relative to the virtual install directory
	Source string `json:"fileSource"`

	// Destination is relative to the mod's install directory
	Destination string `json:"fileDestination"`

	Active   bool `json:"isActive"`
	Priority int  `json:"filePriority"`
}

// RawModEntry is a mod as listed by the legacy manager, before enhancement.
type RawModEntry struct {
	NexusID     string `json:"nexusId,omitempty"`
	DownloadID  string `json:"downloadId,omitempty"`
	ModName     string `json:"modName"`
	ModFilename string `json:"modFilename"`
	ArchivePath string `json:"archivePath"`
	ModVersion  string `json:"modVersion,omitempty"`

	FileEntries []FileEntry `json:"fileEntries"`

	// IsAlreadyManaged marks mods the target catalog already knows.
	// It only changes the default selection; it never blocks an import.
	IsAlreadyManaged bool `json:"isAlreadyManaged"`
}

// ModEntry is a RawModEntry after enhancement. Values of this type are only
// produced by Reader.Enhance and are read-only afterwards.
type ModEntry struct {
	RawModEntry

	// ArchiveID is generated locally and identifies the archive download
	ArchiveID string `json:"archiveId"`

	// CategoryID comes from FOMOD metadata when available
	CategoryID *int `json:"categoryId,omitempty"`
}

// InstallID is the mod's archive file name without its extension. It names
// the mod's directory in the target install directory and its catalog entry.
func (m RawModEntry) InstallID() string {
	return CacheID(m.ModFilename)
}

// InstallID is RawModEntry.InstallID, or ArchiveID when the archive name
// does not yield a usable directory name (".7z", "..").
func (m ModEntry) InstallID() string {
	id := m.RawModEntry.InstallID()
	if fsops.ValidateIdentifier(id) != nil && m.ArchiveID != "" {
		return m.ArchiveID
	}
	return id
}

// ArchiveFile is the full path of the mod's archive in the legacy layout.
func (m RawModEntry) ArchiveFile() string {
	return filepath.Join(m.ArchivePath, m.ModFilename)
}

// DisplayName returns ModName, falling back to ModFilename.
func (m RawModEntry) DisplayName() string {
	if m.ModName != "" {
		return m.ModName
	}
	return m.ModFilename
}

// CacheID derives the cache entry identifier from an archive file name.
func CacheID(modFilename string) string {
	base := filepath.Base(strings.ReplaceAll(modFilename, `\`, "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
