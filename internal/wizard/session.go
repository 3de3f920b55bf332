// Package wizard sequences an import as a finite-state machine.
//
// A Session moves through Idle, Discovering, Parsing, Transferring and
// Reviewed. Each operation is valid only in specific states and moves the
// session forward once it completes:
//
//	Idle         --Discover-->  Discovering  (Idle again if nothing is found)
//	Discovering  --Parse----->  Parsing      (stays Discovering on error)
//	Parsing      --Start----->  Transferring --> Reviewed
//	Reviewed     --Reset----->  Idle
//
// Select switches the installation in Discovering or Parsing, returning to
// Discovering. Cancel returns to Idle from any state before Transferring.
// Failures before a transfer starts are kept as an inline error on the
// session rather than ending it.
package wizard

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/danieljhkim/modimport/internal/legacy"
	"github.com/danieljhkim/modimport/internal/trace"
	"github.com/danieljhkim/modimport/internal/transfer"
)

// Source reads legacy installations.
type Source interface {
	FindInstances(ctx context.Context, base, gameID string) ([]legacy.InstanceRoots, error)
	ReadModList(roots legacy.InstanceRoots, known legacy.KnownMods) ([]legacy.RawModEntry, error)
	EnhanceAll(modsRoot string, mods []legacy.RawModEntry) []legacy.ModEntry
}

// KnownModsSource reports the mods the target catalog already manages.
type KnownModsSource interface {
	KnownMods(gameID string) (legacy.KnownMods, error)
}

// Importer runs an import. It must finish the trace it is given.
type Importer interface {
	Import(ctx context.Context, tr *trace.Trace, req transfer.Request) (*transfer.Result, error)
}

// TraceOpener opens the trace of a run reading from source.
type TraceOpener func(source string) (*trace.Trace, error)

// Config holds the host settings a session runs with.
type Config struct {
	GameID       string
	LegacyBase   string
	InstallPath  string
	DownloadPath string
	ProfileName  string
}

// Session is one pass through the import wizard.
// It is safe for use from multiple goroutines.
type Session struct {
	mu     sync.Mutex
	cfg    Config
	source Source
	known  KnownModsSource
	imp    Importer
	open   TraceOpener
	logger *log.Logger

	state     State
	instances []legacy.InstanceRoots
	selected  int
	mods      []legacy.ModEntry
	enabled   map[string]bool
	archives  bool
	errMsg    string
	result    *transfer.Result
	runErr    error
	logFile   string
}

// NewSession creates a session in the Idle state. A nil logger discards
// diagnostics.
func NewSession(cfg Config, source Source, known KnownModsSource, imp Importer, open TraceOpener, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		cfg:    cfg,
		source: source,
		known:  known,
		imp:    imp,
		open:   open,
		logger: logger,
		state:  Idle,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ErrorMessage returns the inline error of the last failed step, or "".
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Instances returns the discovered installations.
func (s *Session) Instances() []legacy.InstanceRoots {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]legacy.InstanceRoots(nil), s.instances...)
}

// Selected returns the index of the selected installation.
func (s *Session) Selected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Mods returns the parsed mods in document order.
func (s *Session) Mods() []legacy.ModEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]legacy.ModEntry(nil), s.mods...)
}

// Enabled reports whether the mod with the given archive file name is
// selected for import.
func (s *Session) Enabled(modFilename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled[modFilename]
}

// EnabledMods returns the mods selected for import in document order.
func (s *Session) EnabledMods() []legacy.ModEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabledMods()
}

// TransferArchives reports whether archives will be transferred.
func (s *Session) TransferArchives() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archives
}

// Result returns the result of the finished import, or nil.
func (s *Session) Result() *transfer.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// LogFilePath returns the trace log of the last import, or "" before one
// has started.
func (s *Session) LogFilePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logFile
}

// RunErr returns the error that ended the import, or nil.
func (s *Session) RunErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runErr
}

// Discover looks for legacy installations of the configured game.
// Finding none keeps the session Idle with an inline error.
func (s *Session) Discover(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return s.invalid("discover")
	}
	s.errMsg = ""

	instances, err := s.source.FindInstances(ctx, s.cfg.LegacyBase, s.cfg.GameID)
	if err != nil {
		err = fmt.Errorf("failed to discover installations: %w", err)
		s.errMsg = err.Error()
		return err
	}
	if len(instances) == 0 {
		s.errMsg = ErrNoInstances.Error()
		return ErrNoInstances
	}

	s.logger.Debug("discovered installations", "count", len(instances))
	s.instances = instances
	s.selected = 0
	s.state = Discovering
	return nil
}

// Select picks the installation to import from. Selecting while mods are
// loaded discards them.
func (s *Session) Select(idx int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Discovering && s.state != Parsing {
		return s.invalid("select")
	}
	if idx < 0 || idx >= len(s.instances) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidSelection, idx, len(s.instances))
	}

	s.selected = idx
	s.mods = nil
	s.enabled = nil
	s.errMsg = ""
	s.state = Discovering
	return nil
}

// Parse reads and enhances the selected installation's mods. Mods the
// catalog already manages start disabled. On error the session stays in
// Discovering so another installation can be selected.
func (s *Session) Parse(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Discovering {
		return s.invalid("parse")
	}
	s.errMsg = ""

	if err := ctx.Err(); err != nil {
		s.errMsg = err.Error()
		return err
	}

	known, err := s.known.KnownMods(s.cfg.GameID)
	if err != nil {
		err = fmt.Errorf("failed to load known mods: %w", err)
		s.errMsg = err.Error()
		return err
	}

	roots := s.instances[s.selected]
	raws, err := s.source.ReadModList(roots, known)
	if err != nil {
		s.errMsg = err.Error()
		return err
	}

	s.mods = s.source.EnhanceAll(roots.ModsPath, raws)
	s.enabled = make(map[string]bool, len(s.mods))
	for _, mod := range s.mods {
		s.enabled[mod.ModFilename] = !mod.IsAlreadyManaged
	}
	s.state = Parsing
	return nil
}

// SetEnabled selects or deselects a mod for import.
func (s *Session) SetEnabled(modFilename string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Parsing {
		return s.invalid("set enabled")
	}
	if _, ok := s.enabled[modFilename]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMod, modFilename)
	}
	s.enabled[modFilename] = enabled
	return nil
}

// SetAllEnabled selects or deselects every parsed mod.
func (s *Session) SetAllEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Parsing {
		return s.invalid("set enabled")
	}
	for name := range s.enabled {
		s.enabled[name] = enabled
	}
	return nil
}

// SetTransferArchives chooses whether archives are transferred.
func (s *Session) SetTransferArchives(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Parsing {
		return s.invalid("set transfer archives")
	}
	s.archives = enabled
	return nil
}

// Start imports the enabled mods and blocks until the import is done. The
// session is Transferring while the import runs and Reviewed afterwards,
// also when the import fails; the error is then kept as RunErr.
func (s *Session) Start(ctx context.Context, progress transfer.ProgressFunc) error {
	s.mu.Lock()
	if s.state != Parsing {
		err := s.invalid("start")
		s.mu.Unlock()
		return err
	}

	roots := s.instances[s.selected]
	req := transfer.Request{
		Mods:               s.enabledMods(),
		VirtualInstallPath: roots.VirtualInstallDir(),
		LinkPath:           roots.LinkDir(s.cfg.GameID),
		ModsPath:           roots.ModsPath,
		InstallPath:        s.cfg.InstallPath,
		DownloadPath:       s.cfg.DownloadPath,
		GameID:             s.cfg.GameID,
		TransferArchives:   s.archives,
		Progress:           progress,
		ProfileName:        s.cfg.ProfileName,
	}

	tr, err := s.open(roots.VirtualPath)
	if err != nil {
		err = fmt.Errorf("failed to open trace: %w", err)
		s.errMsg = err.Error()
		s.mu.Unlock()
		return err
	}

	s.errMsg = ""
	s.logFile = tr.LogFilePath()
	s.state = Transferring
	s.mu.Unlock()

	result, err := s.imp.Import(ctx, tr, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.runErr = err
	s.state = Reviewed
	return err
}

// Reset discards a finished import and returns to Idle.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Reviewed {
		return s.invalid("reset")
	}
	s.clear()
	return nil
}

// Cancel abandons the session before any transfer has started.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.beforeTransfer() {
		return s.invalid("cancel")
	}
	s.clear()
	return nil
}

func (s *Session) clear() {
	s.state = Idle
	s.instances = nil
	s.selected = 0
	s.mods = nil
	s.enabled = nil
	s.archives = false
	s.errMsg = ""
	s.result = nil
	s.runErr = nil
	s.logFile = ""
}

func (s *Session) enabledMods() []legacy.ModEntry {
	mods := make([]legacy.ModEntry, 0, len(s.mods))
	for _, mod := range s.mods {
		if s.enabled[mod.ModFilename] {
			mods = append(mods, mod)
		}
	}
	return mods
}

func (s *Session) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, s.state)
}
