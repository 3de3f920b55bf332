package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/modimport/internal/catalog"
	"github.com/danieljhkim/modimport/internal/clock"
	"github.com/danieljhkim/modimport/internal/config"
	"github.com/danieljhkim/modimport/internal/fsops"
	"github.com/danieljhkim/modimport/internal/legacy"
	"github.com/danieljhkim/modimport/internal/trace"
	"github.com/danieljhkim/modimport/internal/transfer"
	"github.com/danieljhkim/modimport/internal/wizard"
)

// app holds the real implementations every command is built from.
type app struct {
	paths    *config.Paths
	settings *config.Settings
	fs       fsops.FS
	clock    clock.Clock
	logger   *log.Logger
	reader   *legacy.Reader
	catalog  *catalog.FileCatalog
	engine   *transfer.Engine
}

// newApp loads paths and settings and wires the pipeline.
func newApp() (*app, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	settings, err := config.LoadSettings(paths)
	if err != nil {
		return nil, err
	}
	if gameFlag != "" {
		settings.Game = gameFlag
	}

	logger := newLogger(stderr, verbose)
	fs := fsops.NewRealFS()
	clk := &clock.RealClock{}
	cat := catalog.NewFileCatalog(fs, paths.Data, clk)

	return &app{
		paths:    paths,
		settings: settings,
		fs:       fs,
		clock:    clk,
		logger:   logger,
		reader:   legacy.NewReader(fs, logger.WithPrefix("legacy")),
		catalog:  cat,
		engine:   transfer.NewEngine(fs, cat, logger.WithPrefix("transfer")),
	}, nil
}

// newSession creates a wizard session over the app's pipeline.
func (a *app) newSession(profileName string) (*wizard.Session, error) {
	base, err := a.settings.LegacyBaseDir()
	if err != nil {
		return nil, err
	}
	if profileName == "" {
		profileName = a.settings.ProfileName
	}

	cfg := wizard.Config{
		GameID:       a.settings.Game,
		LegacyBase:   base,
		InstallPath:  a.settings.GameInstallPath(),
		DownloadPath: a.settings.GameDownloadPath(),
		ProfileName:  profileName,
	}
	return wizard.NewSession(cfg, a.reader, a.catalog, a.engine, a.openTrace, a.logger.WithPrefix("wizard")), nil
}

// openTrace starts the trace of an import reading from source.
func (a *app) openTrace(source string) (*trace.Trace, error) {
	return trace.Open(a.fs, a.paths.Imports, source, a.clock)
}

// newLogger creates the diagnostics logger. It logs warnings and errors
// unless debug is set.
func newLogger(w io.Writer, debug bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "modimport",
		Level:  log.WarnLevel,
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportTimestamp(true)
	}
	return logger
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML outputs a value as YAML to stdout.
func outputYAML(v interface{}) error {
	enc := yaml.NewEncoder(stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// structuredOutput writes v in the format selected by the global flags and
// reports whether it did.
func structuredOutput(v interface{}) (bool, error) {
	switch {
	case jsonOutput:
		return true, outputJSON(v)
	case yamlOutput:
		return true, outputYAML(v)
	default:
		return false, nil
	}
}
