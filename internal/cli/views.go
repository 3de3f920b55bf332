package cli

import (
	"time"

	"github.com/danieljhkim/modimport/internal/catalog"
	"github.com/danieljhkim/modimport/internal/legacy"
	"github.com/danieljhkim/modimport/internal/transfer"
)

// instanceView is the structured output of one legacy installation.
type instanceView struct {
	Index       int    `json:"index" yaml:"index"`
	VirtualPath string `json:"virtualPath" yaml:"virtualPath"`
	LinkPath    string `json:"linkPath,omitempty" yaml:"linkPath,omitempty"`
	ModsPath    string `json:"modsPath" yaml:"modsPath"`
}

func newInstanceViews(instances []legacy.InstanceRoots) []instanceView {
	views := make([]instanceView, len(instances))
	for i, inst := range instances {
		views[i] = instanceView{
			Index:       i + 1,
			VirtualPath: inst.VirtualPath,
			LinkPath:    inst.LinkPath,
			ModsPath:    inst.ModsPath,
		}
	}
	return views
}

// modView is the structured output of one parsed mod.
type modView struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Filename    string `json:"filename" yaml:"filename"`
	NexusID     string `json:"nexusId,omitempty" yaml:"nexusId,omitempty"`
	Category    *int   `json:"category,omitempty" yaml:"category,omitempty"`
	Files       int    `json:"files" yaml:"files"`
	ArchiveSize int64  `json:"archiveSize,omitempty" yaml:"archiveSize,omitempty"`
	Managed     bool   `json:"alreadyManaged" yaml:"alreadyManaged"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
}

// profileView is the structured output of one catalog profile.
type profileView struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	GameID    string    `json:"gameId" yaml:"gameId"`
	Mods      int       `json:"mods" yaml:"mods"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

func newProfileView(p *catalog.Profile) profileView {
	return profileView{
		ID:        p.ID,
		Name:      p.Name,
		GameID:    p.GameID,
		Mods:      p.EnabledCount(),
		CreatedAt: p.CreatedAt,
	}
}

// importView is the structured output of a finished import.
type importView struct {
	ProfileID string   `json:"profileId" yaml:"profileId"`
	Imported  int      `json:"imported" yaml:"imported"`
	Failed    []string `json:"failed" yaml:"failed"`
	LogFile   string   `json:"logFile" yaml:"logFile"`
}

func newImportView(r *transfer.Result) importView {
	return importView{
		ProfileID: r.ProfileID,
		Imported:  len(r.Outcomes),
		Failed:    r.Failed,
		LogFile:   r.LogFilePath,
	}
}
