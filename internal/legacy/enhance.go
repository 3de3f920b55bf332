package legacy

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/danieljhkim/modimport/internal/fsops"
	"github.com/danieljhkim/modimport/internal/xmlq"
)

const (
	cacheDirName     = "cache"
	cacheInfoName    = "cacheInfo.txt"
	cacheInfoSep     = "@@"
	cacheNoSubpath   = "-"
	fomodDirName     = "fomod"
	fomodInfoName    = "info.xml"
	fomodRootElement = "fomod"
)

var errNoCategory = errors.New("no category element")

// Enhance returns raw as a ModEntry with a freshly generated ArchiveID and,
// when the legacy per-mod cache under modsRoot provides one, a CategoryID.
//
// Enhancement is best-effort: a missing cache entry, a missing or malformed
// info.xml and a non-numeric category all leave CategoryID nil.
func (r *Reader) Enhance(modsRoot string, raw RawModEntry) ModEntry {
	mod := ModEntry{
		RawModEntry: raw,
		ArchiveID:   r.newID(),
	}

	category, err := r.readCategory(modsRoot, raw.ModFilename)
	if err != nil {
		r.logger.Debug("no category metadata", "mod", raw.ModFilename, "err", err)
		return mod
	}
	mod.CategoryID = &category
	return mod
}

// EnhanceAll enhances mods in order.
func (r *Reader) EnhanceAll(modsRoot string, mods []RawModEntry) []ModEntry {
	out := make([]ModEntry, 0, len(mods))
	for _, raw := range mods {
		out = append(out, r.Enhance(modsRoot, raw))
	}
	return out
}

// readCategory follows <modsRoot>/cache/<id>/cacheInfo.txt to the mod's
// fomod/info.xml and returns its category id.
func (r *Reader) readCategory(modsRoot, modFilename string) (int, error) {
	id := CacheID(modFilename)
	if err := fsops.ValidateIdentifier(id); err != nil {
		return 0, fmt.Errorf("invalid cache id: %w", err)
	}
	cacheBase := filepath.Join(modsRoot, cacheDirName, id)

	info, err := r.fs.ReadFile(filepath.Join(cacheBase, cacheInfoName))
	if err != nil {
		return 0, fmt.Errorf("failed to read cache info: %w", err)
	}

	subpath, err := cacheSubpath(string(info))
	if err != nil {
		return 0, err
	}

	infoXML, err := r.fs.ReadFile(filepath.Join(cacheBase, subpath, fomodDirName, fomodInfoName))
	if err != nil {
		return 0, fmt.Errorf("failed to read fomod info: %w", err)
	}

	return ParseFomodCategory(infoXML)
}

// cacheSubpath extracts the second @@-delimited field of cacheInfo.txt.
func cacheSubpath(content string) (string, error) {
	fields := strings.Split(content, cacheInfoSep)
	if len(fields) < 2 {
		return "", fmt.Errorf("cache info has %d field(s), want at least 2", len(fields))
	}

	sub := strings.TrimSpace(fields[1])
	if sub == cacheNoSubpath || sub == "" {
		return "", nil
	}
	sub = fsops.ToSlashNative(sub)
	if err := fsops.ValidateRelPath(sub); err != nil {
		return "", fmt.Errorf("invalid cache subpath: %w", err)
	}
	return sub, nil
}

// ParseFomodCategory returns the category id of a FOMOD info.xml document,
// preferring CustomCategoryId over CategoryId.
func ParseFomodCategory(infoXML []byte) (int, error) {
	doc, err := xmlq.Parse(infoXML)
	if err != nil {
		return 0, err
	}

	category := fomodValue(doc, "CustomCategoryId")
	if category == "" {
		category = fomodValue(doc, "CategoryId")
	}
	if category == "" {
		return 0, errNoCategory
	}

	id, err := strconv.Atoi(category)
	if err != nil {
		return 0, fmt.Errorf("non-numeric category %q: %w", category, err)
	}
	return id, nil
}

func fomodValue(doc *xmlq.Node, element string) string {
	n := doc.First(xmlq.El(fomodRootElement), xmlq.El(element))
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text())
}
