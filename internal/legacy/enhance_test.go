package legacy

import (
	"path/filepath"
	"reflect"
	"testing"
)

func fomodInfo(body string) string {
	return `<?xml version="1.0" encoding="utf-8"?><fomod>` + body + `</fomod>`
}

func TestEnhance_MissingCacheKeepsEntry(t *testing.T) {
	raw := RawModEntry{
		NexusID:     "3863",
		ModName:     "SkyUI",
		ModFilename: "SkyUI.7z",
		ArchivePath: "/archives",
		FileEntries: []FileEntry{{Source: "skyui/a.esp", Destination: "a.esp", Active: true}},
	}

	got := newTestReader().Enhance(t.TempDir(), raw)

	if got.ArchiveID != "id-1" {
		t.Errorf("ArchiveID = %q, want a generated id", got.ArchiveID)
	}
	if got.CategoryID != nil {
		t.Errorf("CategoryID = %d, want nil", *got.CategoryID)
	}
	if !reflect.DeepEqual(got.RawModEntry, raw) {
		t.Errorf("raw fields changed: %+v", got.RawModEntry)
	}
}

func TestEnhance_Category(t *testing.T) {
	tests := []struct {
		name      string
		cacheInfo string
		infoPath  string
		info      string
		want      *int
	}{
		{
			name:      "custom category preferred",
			cacheInfo: "SkyUI@@-",
			infoPath:  "fomod/info.xml",
			info:      fomodInfo(`<CategoryId>3</CategoryId><CustomCategoryId>42</CustomCategoryId>`),
			want:      intPtr(42),
		},
		{
			name:      "falls back to category",
			cacheInfo: "SkyUI@@-",
			infoPath:  "fomod/info.xml",
			info:      fomodInfo(`<CategoryId> 7 </CategoryId>`),
			want:      intPtr(7),
		},
		{
			name:      "empty custom category falls back",
			cacheInfo: "SkyUI@@-",
			infoPath:  "fomod/info.xml",
			info:      fomodInfo(`<CustomCategoryId></CustomCategoryId><CategoryId>9</CategoryId>`),
			want:      intPtr(9),
		},
		{
			name:      "subpath from cache info",
			cacheInfo: "SkyUI@@SkyUI 5.2\\Data\r\n",
			infoPath:  "SkyUI 5.2/Data/fomod/info.xml",
			info:      fomodInfo(`<CategoryId>12</CategoryId>`),
			want:      intPtr(12),
		},
		{
			name:      "non-numeric category dropped",
			cacheInfo: "SkyUI@@-",
			infoPath:  "fomod/info.xml",
			info:      fomodInfo(`<CategoryId>User Interface</CategoryId>`),
		},
		{
			name:      "no category element",
			cacheInfo: "SkyUI@@-",
			infoPath:  "fomod/info.xml",
			info:      fomodInfo(`<Name>SkyUI</Name>`),
		},
		{
			name:      "malformed info.xml",
			cacheInfo: "SkyUI@@-",
			infoPath:  "fomod/info.xml",
			info:      `<fomod><CategoryId>5</fomod>`,
		},
		{
			name:      "cache info without separator",
			cacheInfo: "SkyUI",
			infoPath:  "fomod/info.xml",
			info:      fomodInfo(`<CategoryId>5</CategoryId>`),
		},
		{
			name:      "subpath escaping the cache entry",
			cacheInfo: "SkyUI@@../../elsewhere",
			infoPath:  "fomod/info.xml",
			info:      fomodInfo(`<CategoryId>5</CategoryId>`),
		},
		{
			name:      "info.xml missing",
			cacheInfo: "SkyUI@@-",
			infoPath:  "other/info.xml",
			info:      fomodInfo(`<CategoryId>5</CategoryId>`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modsRoot := t.TempDir()
			cacheBase := filepath.Join(modsRoot, "cache", "SkyUI_5_2")
			writeFile(t, filepath.Join(cacheBase, "cacheInfo.txt"), tt.cacheInfo)
			writeFile(t, filepath.Join(cacheBase, filepath.FromSlash(tt.infoPath)), tt.info)

			got := newTestReader().Enhance(modsRoot, RawModEntry{ModName: "SkyUI", ModFilename: "SkyUI_5_2.7z"})

			if got.ArchiveID == "" {
				t.Error("ArchiveID must always be generated")
			}
			if !reflect.DeepEqual(got.CategoryID, tt.want) {
				t.Errorf("CategoryID = %v, want %v", deref(got.CategoryID), deref(tt.want))
			}
		})
	}
}

func TestEnhanceAll_FreshIDsInOrder(t *testing.T) {
	raws := []RawModEntry{
		{ModFilename: "a.7z"},
		{ModFilename: "b.7z"},
		{ModFilename: "c.7z"},
	}

	got := newTestReader().EnhanceAll(t.TempDir(), raws)

	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	for i, want := range []string{"id-1", "id-2", "id-3"} {
		if got[i].ArchiveID != want {
			t.Errorf("entry %d ArchiveID = %q, want %q", i, got[i].ArchiveID, want)
		}
		if got[i].ModFilename != raws[i].ModFilename {
			t.Errorf("entry %d out of order: %q", i, got[i].ModFilename)
		}
	}
}

func TestCacheID(t *testing.T) {
	tests := map[string]string{
		"SkyUI.7z":           "SkyUI",
		"Mod.With.Dots.zip":  "Mod.With.Dots",
		"archive.tar.gz":     "archive.tar",
		"noext":              "noext",
		`sub\dir\Windows.7z`: "Windows",
	}
	for in, want := range tests {
		if got := CacheID(in); got != want {
			t.Errorf("CacheID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestModEntry_InstallID(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"plain archive", "SkyUI.7z", "SkyUI"},
		{"leading dots kept", "..And Justice.7z", "..And Justice"},
		{"bare extension", ".7z", "archive-1"},
		{"dot dot", "...7z", "archive-1"},
		{"empty", "", "archive-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := ModEntry{RawModEntry: RawModEntry{ModFilename: tt.filename}, ArchiveID: "archive-1"}
			if got := mod.InstallID(); got != tt.want {
				t.Errorf("InstallID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func intPtr(v int) *int {
	return &v
}

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
