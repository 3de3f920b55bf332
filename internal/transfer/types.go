package transfer

import "github.com/danieljhkim/modimport/internal/legacy"

// DefaultProfileName names the profile an import creates when the request
// does not name one.
const DefaultProfileName = "Imported NMM Profile"

// ProgressFunc is called once per mod, before the mod is transferred, with
// the mod's display name and its zero-based position in the request.
type ProgressFunc func(modName string, idx int)

// Request describes one import run.
type Request struct {
	// Mods are the enhanced mods to import, in transfer order
	Mods []legacy.ModEntry

	// VirtualInstallPath is the legacy VirtualInstall directory
	VirtualInstallPath string

	// LinkPath is the per-game hard-link directory; may be empty
	LinkPath string

	// ModsPath is the legacy mods root
	ModsPath string

	// InstallPath is the target install directory for the game
	InstallPath string

	// DownloadPath is the target download directory for the game
	DownloadPath string

	// GameID is the target platform's game id
	GameID string

	// TransferArchives also registers and copies each mod's archive
	TransferArchives bool

	// Progress is optional
	Progress ProgressFunc

	// ProfileName defaults to DefaultProfileName
	ProfileName string
}

// sourceRoots returns the roots unpacked files are looked up in, in
// priority order.
func (r *Request) sourceRoots() []string {
	var roots []string
	for _, root := range []string{r.VirtualInstallPath, r.LinkPath, r.ModsPath} {
		if root != "" {
			roots = append(roots, root)
		}
	}
	return roots
}

// Outcome is what happened to one mod.
type Outcome struct {
	// ModName is the mod's display name
	ModName string

	// ModFilename is the mod's archive file name
	ModFilename string

	// Copied counts unpacked files copied into the install directory
	Copied int

	// FailedFiles lists the sources of unpacked files that could not be copied
	FailedFiles []string

	// ArchiveErr is nil if the archive was transferred or not requested
	ArchiveErr error
}

// OK reports whether the mod transferred without any failure.
func (o Outcome) OK() bool {
	return len(o.FailedFiles) == 0 && o.ArchiveErr == nil
}

// Result is the outcome of an import run.
type Result struct {
	// Failed lists the display name of every mod whose unpacked files failed
	// and the archive file name of every mod whose archive failed, in the
	// order the failures happened
	Failed []string

	// Outcomes has one entry per requested mod, in request order
	Outcomes []Outcome

	// ProfileID is the profile the import created
	ProfileID string

	// LogFilePath is the run's trace log
	LogFilePath string
}

// OK reports whether every mod transferred without failure.
func (r *Result) OK() bool {
	return len(r.Failed) == 0
}
