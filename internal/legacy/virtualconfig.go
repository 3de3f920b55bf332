package legacy

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/danieljhkim/modimport/internal/fsops"
	"github.com/danieljhkim/modimport/internal/xmlq"
)

var (
	// ErrNoVirtualConfig indicates the installation has no VirtualModConfig.xml.
	ErrNoVirtualConfig = errors.New("virtual mod configuration not found")

	// ErrMalformedVirtualConfig indicates VirtualModConfig.xml could not be parsed.
	ErrMalformedVirtualConfig = errors.New("virtual mod configuration is malformed")
)

// KnownMods reports which mods the target catalog already manages, keyed by
// install id and by archive file name.
type KnownMods map[string]bool

// managed reports whether the catalog already has raw.
func (k KnownMods) managed(raw RawModEntry) bool {
	if len(k) == 0 {
		return false
	}
	return k[raw.InstallID()] || k[raw.ModFilename]
}

// ReadModList reads and parses the VirtualModConfig.xml of an installation.
func (r *Reader) ReadModList(roots InstanceRoots, known KnownMods) ([]RawModEntry, error) {
	path := roots.VirtualConfigPath()
	data, err := r.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoVirtualConfig, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mods, err := ParseVirtualModConfig(data, known)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("parsed virtual mod configuration", "path", path, "mods", len(mods))
	return mods, nil
}

// ParseVirtualModConfig turns a VirtualModConfig.xml document into mod
// records in document order.
//
// Every modInfo element becomes one record; elements without a modFileName
// are skipped, and later records repeating an earlier modFileName are
// dropped because the archive file name is the only reliable unique key.
func ParseVirtualModConfig(data []byte, known KnownMods) ([]RawModEntry, error) {
	doc, err := xmlq.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVirtualConfig, err)
	}

	root := doc.First(xmlq.El("virtualModActivator"))
	if root == nil {
		return nil, fmt.Errorf("%w: missing virtualModActivator element", ErrMalformedVirtualConfig)
	}

	seen := make(map[string]bool)
	mods := []RawModEntry{}
	for _, info := range root.All(xmlq.El("modInfo")) {
		filename := strings.TrimSpace(info.Attrs["modFileName"])
		if filename == "" || seen[filename] {
			continue
		}
		seen[filename] = true

		raw := RawModEntry{
			NexusID:     info.Attrs["modId"],
			DownloadID:  info.Attrs["downloadId"],
			ModName:     info.Attrs["modName"],
			ModFilename: filename,
			ArchivePath: info.Attrs["modFilePath"],
			ModVersion:  info.Attrs["FileVersion"],
			FileEntries: fileEntries(info),
		}
		raw.IsAlreadyManaged = known.managed(raw)
		mods = append(mods, raw)
	}

	return mods, nil
}

func fileEntries(info *xmlq.Node) []FileEntry {
	links := info.All(xmlq.El("fileLink"))
	entries := make([]FileEntry, 0, len(links))
	for _, link := range links {
		source := linkValue(link, "realPath")
		if source == "" {
			continue
		}
		priority, _ := strconv.Atoi(strings.TrimSpace(linkValue(link, "linkPriority")))
		entries = append(entries, FileEntry{
			Source:      fsops.ToSlashNative(source),
			Destination: fsops.ToSlashNative(linkValue(link, "virtualPath")),
			Active:      parseBool(linkValue(link, "isActive"), true),
			Priority:    priority,
		})
	}
	return entries
}

// linkValue reads a fileLink property. Depending on the writer's version it
// is an attribute or a child element; the attribute wins.
func linkValue(link *xmlq.Node, name string) string {
	if v, ok := link.Attr(name); ok {
		return v
	}
	if child := link.First(xmlq.El(name)); child != nil {
		return strings.TrimSpace(child.InnerText())
	}
	return ""
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return b
}
