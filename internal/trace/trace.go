// Package trace records one import run as an append-only, structured log.
//
// Each run gets its own directory under the imports root holding import.log
// (one JSON object per line) and any artifacts written with WriteFile, such
// as the parsedMods.json snapshot taken before files are transferred. The
// trace is opened once at the start of a run and finished exactly once at the
// end, whether or not the run succeeded.
package trace

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/danieljhkim/modimport/internal/clock"
	"github.com/danieljhkim/modimport/internal/fsops"
)

// LogFileName is the name of the log inside a run directory.
const LogFileName = "import.log"

// ErrFinished is returned by WriteFile after Finish.
var ErrFinished = errors.New("trace already finished")

// Level is the severity of a trace entry.
type Level = log.Level

// Levels accepted by Trace.Log.
const (
	DebugLevel = log.DebugLevel
	InfoLevel  = log.InfoLevel
	WarnLevel  = log.WarnLevel
	ErrorLevel = log.ErrorLevel
)

// Trace is the append-only record of one import run.
// It is safe for use from multiple goroutines; entries appear in the order
// Log was called.
type Trace struct {
	mu       sync.Mutex
	fs       fsops.FS
	runID    string
	dir      string
	logPath  string
	out      io.WriteCloser
	logger   *log.Logger
	finished bool
	closeErr error
}

// Open creates a run directory under root and starts its log. source names
// the migration source the run reads from and is recorded in the first
// entry.
func Open(fs fsops.FS, root, source string, clk clock.Clock) (*Trace, error) {
	runID := uuid.NewString()
	dir := filepath.Join(root, clock.RunStamp(clk)+"-"+runID[:8])

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}

	logPath := filepath.Join(dir, LogFileName)
	out, err := fs.OpenAppend(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace log: %w", err)
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           log.DebugLevel,
		Formatter:       log.JSONFormatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		TimeFunction:    func(time.Time) time.Time { return clk.Now().UTC() },
	})

	t := &Trace{
		fs:      fs,
		runID:   runID,
		dir:     dir,
		logPath: logPath,
		out:     out,
		logger:  logger,
	}
	t.Log(InfoLevel, "import started", "run", runID, "source", source)
	return t, nil
}

// Log appends an entry. keyvals are alternating keys and values attached as
// context. Entries logged after Finish are dropped.
func (t *Trace) Log(level Level, msg string, keyvals ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return
	}
	t.logger.Log(level, msg, keyvals...)
}

// Info appends an info entry.
func (t *Trace) Info(msg string, keyvals ...any) {
	t.Log(InfoLevel, msg, keyvals...)
}

// Error appends an error entry.
func (t *Trace) Error(msg string, keyvals ...any) {
	t.Log(ErrorLevel, msg, keyvals...)
}

// WriteFile stores an artifact named name in the run directory.
func (t *Trace) WriteFile(name string, data []byte) error {
	if err := t.fs.ValidateIdentifier(name); err != nil {
		return fmt.Errorf("invalid artifact name: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return ErrFinished
	}
	if err := t.fs.AtomicWrite(filepath.Join(t.dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write trace artifact %s: %w", name, err)
	}
	t.logger.Debug("wrote artifact", "name", name, "bytes", len(data))
	return nil
}

// LogFilePath is the path of the run's log file. It does not change for the
// lifetime of the run and stays valid after Finish.
func (t *Trace) LogFilePath() string {
	return t.logPath
}

// Dir is the run directory.
func (t *Trace) Dir() string {
	return t.dir
}

// RunID identifies the run.
func (t *Trace) RunID() string {
	return t.runID
}

// Finish writes a closing entry, flushes and closes the log. Only the first
// call has any effect; later calls return the first call's result.
func (t *Trace) Finish() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return t.closeErr
	}
	t.logger.Info("import finished", "run", t.runID)
	t.finished = true

	if s, ok := t.out.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil {
			t.closeErr = fmt.Errorf("failed to flush trace log: %w", err)
		}
	}
	if err := t.out.Close(); err != nil && t.closeErr == nil {
		t.closeErr = fmt.Errorf("failed to close trace log: %w", err)
	}
	return t.closeErr
}
