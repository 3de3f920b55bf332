// Package transfer moves mods out of a legacy installation into the target
// platform.
//
// An import copies each mod's unpacked files into the target install
// directory and, on request, registers and copies its archive into the
// target download directory. Mods are transferred one at a time. A mod that
// fails is recorded and the run moves on to the next; only infrastructural
// failures stop a run. Once every mod has been attempted, a new profile is
// committed to the catalog with every attempted mod enabled.
//
// Source files are only ever read. A run refuses to start if a target
// directory lies inside one of the legacy roots.
package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/rs/xid"

	"github.com/danieljhkim/modimport/internal/catalog"
	"github.com/danieljhkim/modimport/internal/fsops"
	"github.com/danieljhkim/modimport/internal/hash"
	"github.com/danieljhkim/modimport/internal/legacy"
	"github.com/danieljhkim/modimport/internal/trace"
)

// ParsedModsFile is the trace artifact holding the mods a run was asked to
// import.
const ParsedModsFile = "parsedMods.json"

// Catalog is the part of the target catalog an import writes to.
type Catalog interface {
	AddLocalDownload(archiveID, gameID, fileName string, size int64, fileMD5 string) error
	CommitImport(gameID, profileID, name string, mods []legacy.ModEntry) (*catalog.Profile, error)
}

// Engine runs imports.
type Engine struct {
	fs      fsops.FS
	catalog Catalog
	logger  *log.Logger
	hasher  hash.Hasher
	newID   func() string
}

// NewEngine creates a new Engine. A nil logger discards diagnostics.
func NewEngine(fs fsops.FS, cat Catalog, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		fs:      fs,
		catalog: cat,
		logger:  logger,
		hasher:  hash.NewMD5Hasher(),
		newID:   func() string { return xid.New().String() },
	}
}

// WithHasher replaces the archive checksum implementation.
func (e *Engine) WithHasher(h hash.Hasher) *Engine {
	e.hasher = h
	return e
}

// WithIDGenerator replaces the profile ID generator.
func (e *Engine) WithIDGenerator(gen func() string) *Engine {
	e.newID = gen
	return e
}

// Import runs one import and records it in tr. The engine owns tr for the
// duration of the call and finishes it before returning, on every path.
//
// Per-mod failures are reported in the Result. An error is returned only if
// the run could not start, the mod snapshot could not be written or the
// catalog commit failed.
func (e *Engine) Import(ctx context.Context, tr *trace.Trace, req Request) (*Result, error) {
	defer func() {
		if err := tr.Finish(); err != nil {
			e.logger.Warn("failed to finish trace", "err", err)
		}
	}()

	if err := e.checkDestinations(&req); err != nil {
		tr.Error("import refused", "err", err)
		return nil, err
	}

	snapshot, err := json.Marshal(req.Mods)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mod list: %w", err)
	}
	if err := tr.WriteFile(ParsedModsFile, snapshot); err != nil {
		return nil, fmt.Errorf("failed to record mod list: %w", err)
	}

	if err := ctx.Err(); err != nil {
		tr.Error("import cancelled before transfer", "err", err)
		return nil, fmt.Errorf("import cancelled: %w", err)
	}

	result := &Result{
		Failed:      []string{},
		Outcomes:    make([]Outcome, 0, len(req.Mods)),
		LogFilePath: tr.LogFilePath(),
	}

	tr.Info("transfer unpacked mod files", "mods", len(req.Mods), "archives", req.TransferArchives)
	roots := req.sourceRoots()

	for idx, mod := range req.Mods {
		tr.Info("transferring", "mod", mod.ModFilename, "name", mod.ModName, "files", len(mod.FileEntries))
		if req.Progress != nil {
			req.Progress(mod.DisplayName(), idx)
		}

		outcome := Outcome{ModName: mod.DisplayName(), ModFilename: mod.ModFilename}

		outcome.Copied, outcome.FailedFiles = e.transferUnpackedMod(mod, roots, req.InstallPath)
		if len(outcome.FailedFiles) > 0 {
			tr.Error("failed to import", "mod", mod.ModFilename, "files", outcome.FailedFiles)
			result.Failed = append(result.Failed, mod.DisplayName())
		}

		if req.TransferArchives {
			size, err := e.transferArchive(mod, req.GameID, req.DownloadPath)
			if err != nil {
				outcome.ArchiveErr = err
				tr.Error("failed to import mod archive", "archive", mod.ModFilename, "err", err)
				result.Failed = append(result.Failed, mod.ModFilename)
			} else {
				tr.Info("transferred archive", "archive", mod.ModFilename, "id", mod.ArchiveID, "bytes", size)
			}
		}

		result.Outcomes = append(result.Outcomes, outcome)
	}

	tr.Info("finished transferring unpacked mod files", "failed", len(result.Failed))

	name := req.ProfileName
	if name == "" {
		name = DefaultProfileName
	}
	profileID := e.newID()
	if _, err := e.catalog.CommitImport(req.GameID, profileID, name, req.Mods); err != nil {
		tr.Error("failed to create profile", "profile", profileID, "err", err)
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	result.ProfileID = profileID
	tr.Info("created profile", "profile", profileID, "name", name, "mods", len(req.Mods))

	return result, nil
}

// checkDestinations rejects target directories inside any legacy root.
func (e *Engine) checkDestinations(req *Request) error {
	targets := []string{req.InstallPath}
	if req.TransferArchives {
		targets = append(targets, req.DownloadPath)
	}

	for _, target := range targets {
		if target == "" {
			return fmt.Errorf("missing target directory")
		}
		for _, root := range req.sourceRoots() {
			if fsops.IsWithin(target, root) {
				return fmt.Errorf("%w: %s is inside %s", ErrDestinationInsideSource, target, root)
			}
		}
	}
	return nil
}
