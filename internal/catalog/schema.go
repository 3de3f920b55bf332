package catalog

import (
	"time"

	"github.com/danieljhkim/modimport/internal/legacy"
)

// SchemaVersion is the version written into every catalog file.
const SchemaVersion = 1

// ModStateInstalled is the state of a mod whose files are in the install
// directory.
const ModStateInstalled = "installed"

// ImportNote is attached to every mod registered by an import.
const ImportNote = "Imported from Nexus Mod Manager"

// Mod is a mod known to the target platform.
type Mod struct {
	// ID is the mod's directory name inside the game's install directory
	ID string `json:"id"`

	// State is the lifecycle state; imports always register installed mods
	State string `json:"state"`

	// InstallationPath is relative to the game's install directory
	InstallationPath string `json:"installationPath"`

	// ArchiveID links the mod to its entry in downloads.json
	ArchiveID string `json:"archiveId,omitempty"`

	Attributes ModAttributes `json:"attributes"`
}

// ModAttributes is the descriptive metadata kept for a mod.
type ModAttributes struct {
	Name            string    `json:"name"`
	Version         string    `json:"version,omitempty"`
	ModID           string    `json:"modId,omitempty"`
	DownloadID      string    `json:"downloadId,omitempty"`
	Category        *int      `json:"category,omitempty"`
	FileName        string    `json:"fileName"`
	LogicalFileName string    `json:"logicalFileName"`
	InstallTime     time.Time `json:"installTime"`
	Source          string    `json:"source"`
	DownloadGame    string    `json:"downloadGame"`
	Notes           string    `json:"notes,omitempty"`
}

// ModsFile is the mods.json file of one game.
type ModsFile struct {
	SchemaVersion int            `json:"schemaVersion"`
	Mods          map[string]Mod `json:"mods"`
}

// Download is an archive registered with the download manager.
type Download struct {
	ID     string `json:"id"`
	GameID string `json:"gameId"`

	// FileName is the archive's name inside the game's download directory
	FileName string `json:"fileName"`

	Size int64 `json:"size"`

	// FileMD5 is the archive's checksum, empty if it could not be computed
	FileMD5 string `json:"fileMD5,omitempty"`

	AddedAt time.Time `json:"addedAt"`
}

// DownloadsFile is the downloads.json file of one game.
type DownloadsFile struct {
	SchemaVersion int                 `json:"schemaVersion"`
	Downloads     map[string]Download `json:"downloads"`
}

// Profile is a named set of enabled mods for one game.
type Profile struct {
	SchemaVersion int    `json:"schemaVersion"`
	ID            string `json:"id"`
	GameID        string `json:"gameId"`
	Name          string `json:"name"`

	// ModState maps mod IDs to their state in this profile
	ModState map[string]ProfileModState `json:"modState"`

	CreatedAt time.Time `json:"createdAt"`
}

// ProfileModState records whether a mod is enabled in a profile.
type ProfileModState struct {
	Enabled     bool      `json:"enabled"`
	EnabledTime time.Time `json:"enabledTime"`
}

// EnabledCount returns the number of mods enabled in the profile.
func (p *Profile) EnabledCount() int {
	n := 0
	for _, s := range p.ModState {
		if s.Enabled {
			n++
		}
	}
	return n
}

// NewModsFile creates an empty ModsFile.
func NewModsFile() *ModsFile {
	return &ModsFile{
		SchemaVersion: SchemaVersion,
		Mods:          map[string]Mod{},
	}
}

// NewDownloadsFile creates an empty DownloadsFile.
func NewDownloadsFile() *DownloadsFile {
	return &DownloadsFile{
		SchemaVersion: SchemaVersion,
		Downloads:     map[string]Download{},
	}
}

// NewProfile creates a profile with no mods.
func NewProfile(id, gameID, name string, createdAt time.Time) *Profile {
	return &Profile{
		SchemaVersion: SchemaVersion,
		ID:            id,
		GameID:        gameID,
		Name:          name,
		ModState:      map[string]ProfileModState{},
		CreatedAt:     createdAt,
	}
}

// ModFromEntry converts an enhanced legacy mod into a catalog record.
func ModFromEntry(gameID string, entry legacy.ModEntry, installTime time.Time) Mod {
	id := entry.InstallID()
	return Mod{
		ID:               id,
		State:            ModStateInstalled,
		InstallationPath: id,
		ArchiveID:        entry.ArchiveID,
		Attributes: ModAttributes{
			Name:            entry.DisplayName(),
			Version:         entry.ModVersion,
			ModID:           entry.NexusID,
			DownloadID:      entry.DownloadID,
			Category:        entry.CategoryID,
			FileName:        entry.ModFilename,
			LogicalFileName: entry.DisplayName(),
			InstallTime:     installTime,
			Source:          "nexus",
			DownloadGame:    gameID,
			Notes:           ImportNote,
		},
	}
}
