// Package catalog is the target platform's record of mods, downloads and
// profiles.
//
// Each game has its own directory under the data root:
//
//	games/<gameID>/mods.json
//	games/<gameID>/downloads.json
//	games/<gameID>/profiles/<profileID>.json
//
// Every file is replaced atomically. When an import commits, mods.json is
// written before the profile, so a profile on disk never enables a mod the
// catalog does not know.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/danieljhkim/modimport/internal/clock"
	"github.com/danieljhkim/modimport/internal/fsops"
	"github.com/danieljhkim/modimport/internal/legacy"
)

// Catalog provides access to the target platform's mod records.
type Catalog interface {
	// KnownMods returns the IDs and archive names of mods already registered.
	KnownMods(gameID string) (legacy.KnownMods, error)

	// AddLocalDownload registers an archive with the download manager.
	AddLocalDownload(archiveID, gameID, fileName string, size int64, fileMD5 string) error

	// CreateProfile creates an empty profile.
	CreateProfile(gameID, profileID, name string) (*Profile, error)

	// AddMods registers mods and enables them in an existing profile.
	AddMods(gameID, profileID string, mods []legacy.ModEntry) error

	// CommitImport creates a profile with mods registered and enabled.
	CommitImport(gameID, profileID, name string, mods []legacy.ModEntry) (*Profile, error)

	// ListProfiles returns a game's profiles, oldest first.
	ListProfiles(gameID string) ([]*Profile, error)

	// LoadProfile loads one profile.
	LoadProfile(gameID, profileID string) (*Profile, error)
}

// FileCatalog implements Catalog using JSON files on disk.
type FileCatalog struct {
	mu      sync.Mutex
	fs      fsops.FS
	dataDir string
	clock   clock.Clock
}

// NewFileCatalog creates a new FileCatalog rooted at dataDir.
func NewFileCatalog(fs fsops.FS, dataDir string, clk clock.Clock) *FileCatalog {
	return &FileCatalog{
		fs:      fs,
		dataDir: dataDir,
		clock:   clk,
	}
}

// GameDir returns the directory holding a game's catalog files.
func (c *FileCatalog) GameDir(gameID string) string {
	return filepath.Join(c.dataDir, "games", gameID)
}

func (c *FileCatalog) modsPath(gameID string) string {
	return filepath.Join(c.GameDir(gameID), "mods.json")
}

func (c *FileCatalog) downloadsPath(gameID string) string {
	return filepath.Join(c.GameDir(gameID), "downloads.json")
}

func (c *FileCatalog) profilePath(gameID, profileID string) string {
	return filepath.Join(c.GameDir(gameID), "profiles", profileID+".json")
}

// KnownMods returns the IDs and archive file names of registered mods.
func (c *FileCatalog) KnownMods(gameID string) (legacy.KnownMods, error) {
	if err := c.fs.ValidateIdentifier(gameID); err != nil {
		return nil, fmt.Errorf("invalid game ID: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	mods, err := c.loadMods(gameID)
	if err != nil {
		return nil, err
	}

	known := make(legacy.KnownMods, 2*len(mods.Mods))
	for id, mod := range mods.Mods {
		known[id] = true
		if mod.Attributes.FileName != "" {
			known[mod.Attributes.FileName] = true
		}
	}
	return known, nil
}

// LoadMods loads a game's mods.json. A missing file yields an empty set.
func (c *FileCatalog) LoadMods(gameID string) (*ModsFile, error) {
	if err := c.fs.ValidateIdentifier(gameID); err != nil {
		return nil, fmt.Errorf("invalid game ID: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loadMods(gameID)
}

// LoadDownloads loads a game's downloads.json. A missing file yields an
// empty set.
func (c *FileCatalog) LoadDownloads(gameID string) (*DownloadsFile, error) {
	if err := c.fs.ValidateIdentifier(gameID); err != nil {
		return nil, fmt.Errorf("invalid game ID: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loadDownloads(gameID)
}

// AddLocalDownload registers an archive. Registering the same archive ID
// again replaces the earlier entry.
func (c *FileCatalog) AddLocalDownload(archiveID, gameID, fileName string, size int64, fileMD5 string) error {
	if err := c.fs.ValidateIdentifier(gameID); err != nil {
		return fmt.Errorf("invalid game ID: %w", err)
	}
	if err := c.fs.ValidateIdentifier(archiveID); err != nil {
		return fmt.Errorf("invalid archive ID: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	downloads, err := c.loadDownloads(gameID)
	if err != nil {
		return err
	}

	downloads.Downloads[archiveID] = Download{
		ID:       archiveID,
		GameID:   gameID,
		FileName: fileName,
		Size:     size,
		FileMD5:  fileMD5,
		AddedAt:  c.clock.Now(),
	}

	return c.writeJSON(c.downloadsPath(gameID), downloads, "downloads")
}

// CreateProfile creates an empty profile.
func (c *FileCatalog) CreateProfile(gameID, profileID, name string) (*Profile, error) {
	if err := c.validateProfileKey(gameID, profileID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureNewProfile(gameID, profileID); err != nil {
		return nil, err
	}

	profile := NewProfile(profileID, gameID, name, c.clock.Now())
	if err := c.saveProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// AddMods registers mods in mods.json and enables them in the profile.
func (c *FileCatalog) AddMods(gameID, profileID string, entries []legacy.ModEntry) error {
	if err := c.validateProfileKey(gameID, profileID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	profile, err := c.loadProfile(gameID, profileID)
	if err != nil {
		return err
	}

	return c.registerMods(profile, entries)
}

// CommitImport creates the profile an import produces with every mod
// registered and enabled.
func (c *FileCatalog) CommitImport(gameID, profileID, name string, entries []legacy.ModEntry) (*Profile, error) {
	if err := c.validateProfileKey(gameID, profileID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureNewProfile(gameID, profileID); err != nil {
		return nil, err
	}

	profile := NewProfile(profileID, gameID, name, c.clock.Now())
	if err := c.registerMods(profile, entries); err != nil {
		return nil, err
	}
	return profile, nil
}

// ListProfiles returns a game's profiles sorted by creation time, then ID.
func (c *FileCatalog) ListProfiles(gameID string) ([]*Profile, error) {
	if err := c.fs.ValidateIdentifier(gameID); err != nil {
		return nil, fmt.Errorf("invalid game ID: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Dir(c.profilePath(gameID, "x"))
	entries, err := c.fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Profile{}, nil
		}
		return nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}

	profiles := []*Profile{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		profile, err := c.loadProfile(gameID, id)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		if !profiles[i].CreatedAt.Equal(profiles[j].CreatedAt) {
			return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
		}
		return profiles[i].ID < profiles[j].ID
	})
	return profiles, nil
}

// LoadProfile loads one profile.
func (c *FileCatalog) LoadProfile(gameID, profileID string) (*Profile, error) {
	if err := c.validateProfileKey(gameID, profileID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loadProfile(gameID, profileID)
}

// registerMods writes mods.json and then the profile with the mods enabled.
// Entries without a usable ID are skipped. Callers hold c.mu.
func (c *FileCatalog) registerMods(profile *Profile, entries []legacy.ModEntry) error {
	mods, err := c.loadMods(profile.GameID)
	if err != nil {
		return err
	}

	now := c.clock.Now()
	for _, entry := range entries {
		mod := ModFromEntry(profile.GameID, entry, now)
		// Already reported as a failed mod by the transfer.
		if err := c.fs.ValidateIdentifier(mod.ID); err != nil {
			continue
		}
		mods.Mods[mod.ID] = mod
		profile.ModState[mod.ID] = ProfileModState{Enabled: true, EnabledTime: now}
	}

	if err := c.writeJSON(c.modsPath(profile.GameID), mods, "mods"); err != nil {
		return err
	}
	return c.saveProfile(profile)
}

func (c *FileCatalog) validateProfileKey(gameID, profileID string) error {
	if err := c.fs.ValidateIdentifier(gameID); err != nil {
		return fmt.Errorf("invalid game ID: %w", err)
	}
	if err := c.fs.ValidateIdentifier(profileID); err != nil {
		return fmt.Errorf("invalid profile ID: %w", err)
	}
	return nil
}

func (c *FileCatalog) ensureNewProfile(gameID, profileID string) error {
	exists, err := c.fs.Exists(c.profilePath(gameID, profileID))
	if err != nil {
		return fmt.Errorf("failed to check profile: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrProfileExists, profileID)
	}
	return nil
}

func (c *FileCatalog) loadMods(gameID string) (*ModsFile, error) {
	data, err := c.fs.ReadFile(c.modsPath(gameID))
	if err != nil {
		if os.IsNotExist(err) {
			return NewModsFile(), nil
		}
		return nil, fmt.Errorf("failed to read mods file: %w", err)
	}

	var mods ModsFile
	if err := json.Unmarshal(data, &mods); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mods file: %w", err)
	}
	if mods.Mods == nil {
		mods.Mods = map[string]Mod{}
	}
	return &mods, nil
}

func (c *FileCatalog) loadDownloads(gameID string) (*DownloadsFile, error) {
	data, err := c.fs.ReadFile(c.downloadsPath(gameID))
	if err != nil {
		if os.IsNotExist(err) {
			return NewDownloadsFile(), nil
		}
		return nil, fmt.Errorf("failed to read downloads file: %w", err)
	}

	var downloads DownloadsFile
	if err := json.Unmarshal(data, &downloads); err != nil {
		return nil, fmt.Errorf("failed to unmarshal downloads file: %w", err)
	}
	if downloads.Downloads == nil {
		downloads.Downloads = map[string]Download{}
	}
	return &downloads, nil
}

func (c *FileCatalog) loadProfile(gameID, profileID string) (*Profile, error) {
	data, err := c.fs.ReadFile(c.profilePath(gameID, profileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile %s: %w", profileID, err)
	}
	if profile.ModState == nil {
		profile.ModState = map[string]ProfileModState{}
	}
	return &profile, nil
}

func (c *FileCatalog) saveProfile(profile *Profile) error {
	return c.writeJSON(c.profilePath(profile.GameID, profile.ID), profile, "profile")
}

func (c *FileCatalog) writeJSON(path string, v any, what string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", what, err)
	}

	if err := c.fs.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", what, err)
	}
	return nil
}
