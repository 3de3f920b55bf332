package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// GamePlaceholder is substituted with the game id in path settings.
const GamePlaceholder = "{game}"

// DefaultProfileName is the default for Settings.ProfileName.
const DefaultProfileName = "Imported NMM Profile"

// Settings are the host platform queries the migration needs: which game is
// active and where that game's mods and downloads live.
type Settings struct {
	// Game is the target platform's internal game id (e.g. "skyrimse").
	Game string `mapstructure:"game"`

	// InstallPath is the target install directory; may contain {game}.
	InstallPath string `mapstructure:"install_path"`

	// DownloadPath is the target download directory; may contain {game}.
	DownloadPath string `mapstructure:"download_path"`

	// LegacyBase overrides the legacy manager's base directory.
	LegacyBase string `mapstructure:"legacy_base"`

	// ProfileName names the profile created by an import.
	ProfileName string `mapstructure:"profile_name"`
}

// DefaultSettings returns settings rooted at p.
func DefaultSettings(p *Paths) Settings {
	return Settings{
		Game:         "skyrimse",
		InstallPath:  filepath.Join(p.Root, "games", GamePlaceholder, "mods"),
		DownloadPath: filepath.Join(p.Root, "downloads", GamePlaceholder),
		ProfileName:  DefaultProfileName,
	}
}

// LoadSettings reads p.Config if it exists and layers MODIMPORT_* environment
// variables on top of the defaults. A missing settings file is not an error.
func LoadSettings(p *Paths) (*Settings, error) {
	v := viper.New()

	defaults := DefaultSettings(p)
	v.SetDefault("game", defaults.Game)
	v.SetDefault("install_path", defaults.InstallPath)
	v.SetDefault("download_path", defaults.DownloadPath)
	v.SetDefault("legacy_base", "")
	v.SetDefault("profile_name", defaults.ProfileName)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(p.Config)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read settings %s: %w", p.Config, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.Game == "" {
		return nil, fmt.Errorf("invalid settings: game must not be empty")
	}

	return &s, nil
}

// GameInstallPath returns the install directory for the configured game.
func (s *Settings) GameInstallPath() string {
	return expandGame(s.InstallPath, s.Game)
}

// GameDownloadPath returns the download directory for the configured game.
func (s *Settings) GameDownloadPath() string {
	return expandGame(s.DownloadPath, s.Game)
}

// LegacyBaseDir returns the configured legacy base, or the platform default.
func (s *Settings) LegacyBaseDir() (string, error) {
	if s.LegacyBase != "" {
		return s.LegacyBase, nil
	}
	return LegacyBaseDir()
}

func expandGame(path, game string) string {
	return strings.ReplaceAll(path, GamePlaceholder, game)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
