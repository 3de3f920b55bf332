package legacy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// settingBlock renders one keyed setting with a single modeId item.
func settingBlock(name, modeID, value string) string {
	return fmt.Sprintf(`
      <setting name="%s" serializeAs="Xml">
        <value>
          <KeyedSettingsOfString>
            <item modeId="%s">
              <string>%s</string>
            </item>
          </KeyedSettingsOfString>
        </value>
      </setting>`, name, modeID, value)
}

// userConfig renders a user.config document around the given settings.
func userConfig(settings ...string) string {
	return `<?xml version="1.0" encoding="utf-8"?>
<configuration>
  <userSettings>
    <Nexus.Client.Properties.Settings>` + strings.Join(settings, "") + `
    </Nexus.Client.Properties.Settings>
  </userSettings>
</configuration>`
}

// fullUserConfig configures all three roots for modeID under prefix.
func fullUserConfig(modeID, prefix string) string {
	return userConfig(
		settingBlock("VirtualFolder", modeID, prefix+"/virtual"),
		settingBlock("HDLinkFolder", modeID, prefix+"/link"),
		settingBlock("ModFolder", modeID, prefix+"/mods"),
	)
}

// writeFile creates path with content, including parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// sequentialIDs returns an id generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}
