package legacy

import (
	"strings"
	"unicode"

	"github.com/danieljhkim/modimport/internal/xmlq"
)

// Setting names in the legacy manager's user.config.
const (
	settingVirtualFolder = "VirtualFolder"
	settingLinkFolder    = "HDLinkFolder"
	settingModFolder     = "ModFolder"
)

// gameIDOverrides are game ids whose legacy name is not a plain
// capitalization of the target id.
var gameIDOverrides = map[string]string{
	"skyrimse":  "SkyrimSE",
	"falloutnv": "FalloutNV",
}

// ConvertGameID translates a target platform game id into the legacy
// manager's game naming: an explicit override, otherwise the first letter of
// every whitespace-delimited token is upper-cased.
func ConvertGameID(id string) string {
	if mapped, ok := gameIDOverrides[id]; ok {
		return mapped
	}

	var b strings.Builder
	b.Grow(len(id))
	atStart := true
	for _, r := range id {
		if unicode.IsSpace(r) {
			atStart = true
			b.WriteRune(r)
			continue
		}
		if atStart {
			r = unicode.ToUpper(r)
			atStart = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseInstanceRoots extracts the virtual, link and mods folders configured
// for gameID from a legacy user.config document.
//
// The bool result is false when the virtual or mods folder is not configured
// for the game, or when the document is not well-formed XML. The link
// folder is optional.
func ParseInstanceRoots(userConfig []byte, gameID string) (InstanceRoots, bool) {
	doc, err := xmlq.Parse(userConfig)
	if err != nil {
		return InstanceRoots{}, false
	}

	mode := ConvertGameID(gameID)

	virtualPath, ok := settingValue(doc, settingVirtualFolder, mode)
	if !ok {
		return InstanceRoots{}, false
	}
	linkPath, _ := settingValue(doc, settingLinkFolder, mode)
	modsPath, ok := settingValue(doc, settingModFolder, mode)
	if !ok {
		return InstanceRoots{}, false
	}

	return InstanceRoots{
		VirtualPath: virtualPath,
		LinkPath:    linkPath,
		ModsPath:    modsPath,
	}, true
}

// settingValue selects setting[name=setting] item[modeId=mode i] string.
func settingValue(doc *xmlq.Node, setting, mode string) (string, bool) {
	n := doc.First(
		xmlq.Step{Name: "setting", Attr: "name", Value: setting},
		xmlq.Step{Name: "item", Attr: "modeId", Value: mode, Fold: true},
		xmlq.El("string"),
	)
	if n == nil {
		return "", false
	}
	return n.InnerText(), true
}
