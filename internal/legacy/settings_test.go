package legacy

import "testing"

func TestConvertGameID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "skyrimse", want: "SkyrimSE"},
		{in: "falloutnv", want: "FalloutNV"},
		{in: "fallout4", want: "Fallout4"},
		{in: "skyrim", want: "Skyrim"},
		{in: "oblivion", want: "Oblivion"},
		{in: "the witcher", want: "The Witcher"},
		{in: "a  b", want: "A  B"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ConvertGameID(tt.in); got != tt.want {
				t.Errorf("ConvertGameID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseInstanceRoots(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		gameID string
		want   InstanceRoots
		wantOK bool
	}{
		{
			name:   "all three roots",
			doc:    fullUserConfig("SkyrimSE", "D:/NMM"),
			gameID: "skyrimse",
			want:   InstanceRoots{VirtualPath: "D:/NMM/virtual", LinkPath: "D:/NMM/link", ModsPath: "D:/NMM/mods"},
			wantOK: true,
		},
		{
			name:   "modeId compared case-insensitively",
			doc:    fullUserConfig("SKYRIMSE", "D:/NMM"),
			gameID: "skyrimse",
			want:   InstanceRoots{VirtualPath: "D:/NMM/virtual", LinkPath: "D:/NMM/link", ModsPath: "D:/NMM/mods"},
			wantOK: true,
		},
		{
			name: "link folder optional",
			doc: userConfig(
				settingBlock("VirtualFolder", "Fallout4", "E:/v"),
				settingBlock("ModFolder", "Fallout4", "E:/m"),
			),
			gameID: "fallout4",
			want:   InstanceRoots{VirtualPath: "E:/v", ModsPath: "E:/m"},
			wantOK: true,
		},
		{
			name: "missing virtual folder",
			doc: userConfig(
				settingBlock("HDLinkFolder", "SkyrimSE", "E:/l"),
				settingBlock("ModFolder", "SkyrimSE", "E:/m"),
			),
			gameID: "skyrimse",
		},
		{
			name: "missing mod folder",
			doc: userConfig(
				settingBlock("VirtualFolder", "SkyrimSE", "E:/v"),
				settingBlock("HDLinkFolder", "SkyrimSE", "E:/l"),
			),
			gameID: "skyrimse",
		},
		{
			name:   "configured for another game",
			doc:    fullUserConfig("Fallout4", "D:/NMM"),
			gameID: "skyrimse",
		},
		{
			name:   "malformed xml",
			doc:    "<configuration><setting name=\"VirtualFolder\">",
			gameID: "skyrimse",
		},
		{
			name:   "empty document",
			doc:    "",
			gameID: "skyrimse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseInstanceRoots([]byte(tt.doc), tt.gameID)
			if ok != tt.wantOK {
				t.Fatalf("ParseInstanceRoots() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseInstanceRoots() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseInstanceRoots_PicksRequestedGame(t *testing.T) {
	doc := userConfig(`
      <setting name="VirtualFolder" serializeAs="Xml">
        <value><KeyedSettingsOfString>
          <item modeId="Fallout4"><string>F:/fo4</string></item>
          <item modeId="SkyrimSE"><string>S:/sse</string></item>
        </KeyedSettingsOfString></value>
      </setting>
      <setting name="ModFolder" serializeAs="Xml">
        <value><KeyedSettingsOfString>
          <item modeId="Fallout4"><string>F:/fo4mods</string></item>
          <item modeId="SkyrimSE"><string>S:/ssemods</string></item>
        </KeyedSettingsOfString></value>
      </setting>`)

	got, ok := ParseInstanceRoots([]byte(doc), "skyrimse")
	if !ok {
		t.Fatal("expected roots for skyrimse")
	}
	want := InstanceRoots{VirtualPath: "S:/sse", ModsPath: "S:/ssemods"}
	if got != want {
		t.Errorf("ParseInstanceRoots() = %+v, want %+v", got, want)
	}
}
