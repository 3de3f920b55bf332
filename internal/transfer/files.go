package transfer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danieljhkim/modimport/internal/fsops"
	"github.com/danieljhkim/modimport/internal/legacy"
)

// transferUnpackedMod copies the mod's active files into
// <installPath>/<InstallID>. It returns the number of files copied and the
// sources of the files that could not be copied.
func (e *Engine) transferUnpackedMod(mod legacy.ModEntry, roots []string, installPath string) (int, []string) {
	failed := []string{}
	copied := 0

	id := mod.InstallID()
	if err := e.fs.ValidateIdentifier(id); err != nil {
		e.logger.Debug("unusable install id", "mod", mod.ModFilename, "id", id, "err", err)
		for _, entry := range mod.FileEntries {
			if entry.Active {
				failed = append(failed, entry.Source)
			}
		}
		if len(failed) == 0 {
			failed = append(failed, mod.ModFilename)
		}
		return 0, failed
	}
	modDir := filepath.Join(installPath, id)

	for _, entry := range mod.FileEntries {
		if !entry.Active {
			continue
		}

		dest, err := destinationOf(entry)
		if err != nil {
			e.logger.Debug("invalid destination", "mod", mod.ModFilename, "source", entry.Source, "err", err)
			failed = append(failed, entry.Source)
			continue
		}
		if dest == "" {
			e.logger.Debug("skipping entry without destination", "mod", mod.ModFilename, "source", entry.Source)
			continue
		}

		if err := e.transferFile(entry.Source, roots, filepath.Join(modDir, dest)); err != nil {
			e.logger.Debug("file transfer failed", "mod", mod.ModFilename, "source", entry.Source, "err", err)
			failed = append(failed, entry.Source)
			continue
		}
		copied++
	}

	return copied, failed
}

// transferFile copies source, relative to the first root that has it, to dst.
func (e *Engine) transferFile(source string, roots []string, dst string) error {
	if err := e.fs.ValidateRelPath(source); err != nil {
		return err
	}

	native := fsops.ToSlashNative(source)
	for _, root := range roots {
		src := filepath.Join(root, native)
		exists, err := e.fs.Exists(src)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", src, err)
		}
		if !exists {
			continue
		}
		if err := e.fs.Copy(src, dst); err != nil {
			return fmt.Errorf("failed to copy %s: %w", src, err)
		}
		return nil
	}

	return fmt.Errorf("%w: %s", ErrSourceNotFound, source)
}

// transferArchive registers the mod's archive with the catalog and copies it
// into downloadPath. The download is registered before the copy, so a failed
// copy still leaves the registration in place.
func (e *Engine) transferArchive(mod legacy.ModEntry, gameID, downloadPath string) (int64, error) {
	archive := mod.ArchiveFile()

	info, err := e.fs.Stat(archive)
	if err != nil {
		return 0, fmt.Errorf("failed to stat archive: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("archive %s is a directory", archive)
	}

	if err := e.fs.ValidateIdentifier(mod.ModFilename); err != nil {
		return 0, fmt.Errorf("invalid archive name: %w", err)
	}

	// A missing checksum only costs the remote lookup, not the import.
	sum, err := e.hasher.HashFile(archive)
	if err != nil {
		e.logger.Warn("failed to checksum archive", "archive", archive, "err", err)
		sum = ""
	}

	size := info.Size()
	if err := e.catalog.AddLocalDownload(mod.ArchiveID, gameID, mod.ModFilename, size, sum); err != nil {
		return 0, fmt.Errorf("failed to register download: %w", err)
	}
	e.logger.Debug("registered download", "archive", mod.ModFilename, "size", humanize.Bytes(uint64(size)), "md5", sum)

	if err := e.fs.Copy(archive, filepath.Join(downloadPath, mod.ModFilename)); err != nil {
		return size, fmt.Errorf("failed to copy archive: %w", err)
	}
	return size, nil
}

// destinationOf returns the entry's path relative to the mod directory, or
// "" if the entry has nowhere to go. Without an explicit destination the
// source's first component, the mod's own staging folder, is dropped.
func destinationOf(entry legacy.FileEntry) (string, error) {
	dest := fsops.ToSlashNative(entry.Destination)
	if dest == "" {
		src := fsops.ToSlashNative(entry.Source)
		_, rest, found := strings.Cut(src, string(filepath.Separator))
		if !found || rest == "" {
			return "", nil
		}
		dest = rest
	}
	if err := fsops.ValidateRelPath(dest); err != nil {
		return "", err
	}
	return dest, nil
}
