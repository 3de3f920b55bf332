package wizard

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/danieljhkim/modimport/internal/clock"
	"github.com/danieljhkim/modimport/internal/fsops"
	"github.com/danieljhkim/modimport/internal/legacy"
	"github.com/danieljhkim/modimport/internal/trace"
	"github.com/danieljhkim/modimport/internal/transfer"
)

type fakeSource struct {
	instances []legacy.InstanceRoots
	findErr   error
	mods      map[string][]legacy.RawModEntry
	readErr   error
	gotKnown  legacy.KnownMods
}

func (f *fakeSource) FindInstances(ctx context.Context, base, gameID string) ([]legacy.InstanceRoots, error) {
	return f.instances, f.findErr
}

func (f *fakeSource) ReadModList(roots legacy.InstanceRoots, known legacy.KnownMods) ([]legacy.RawModEntry, error) {
	f.gotKnown = known
	if f.readErr != nil {
		return nil, f.readErr
	}
	raws, ok := f.mods[roots.VirtualPath]
	if !ok {
		return nil, legacy.ErrNoVirtualConfig
	}
	out := make([]legacy.RawModEntry, len(raws))
	for i, raw := range raws {
		raw.IsAlreadyManaged = known[raw.ModFilename]
		out[i] = raw
	}
	return out, nil
}

func (f *fakeSource) EnhanceAll(modsRoot string, raws []legacy.RawModEntry) []legacy.ModEntry {
	out := make([]legacy.ModEntry, len(raws))
	for i, raw := range raws {
		out[i] = legacy.ModEntry{RawModEntry: raw, ArchiveID: "a-" + raw.ModFilename}
	}
	return out
}

type fakeKnown struct {
	known legacy.KnownMods
	err   error
}

func (f *fakeKnown) KnownMods(gameID string) (legacy.KnownMods, error) {
	return f.known, f.err
}

// fakeImporter records the request and the session state seen mid-import.
type fakeImporter struct {
	session    *Session
	req        transfer.Request
	stateSeen  State
	traceFound bool
	err        error
}

func (f *fakeImporter) Import(ctx context.Context, tr *trace.Trace, req transfer.Request) (*transfer.Result, error) {
	defer tr.Finish()
	f.req = req
	f.stateSeen = f.session.State()
	f.traceFound = tr.LogFilePath() != ""
	for i, mod := range req.Mods {
		if req.Progress != nil {
			req.Progress(mod.DisplayName(), i)
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &transfer.Result{Failed: []string{}, ProfileID: "p1", LogFilePath: tr.LogFilePath()}, nil
}

var testRoots = []legacy.InstanceRoots{
	{VirtualPath: "/nmm/a", LinkPath: "/links", ModsPath: "/nmm/a/mods"},
	{VirtualPath: "/nmm/b", ModsPath: "/nmm/b/mods"},
}

type harness struct {
	session  *Session
	source   *fakeSource
	known    *fakeKnown
	importer *fakeImporter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	imports := t.TempDir()
	src := &fakeSource{
		instances: testRoots,
		mods: map[string][]legacy.RawModEntry{
			"/nmm/a": {
				{ModName: "SkyUI", ModFilename: "SkyUI.7z"},
				{ModName: "USSEP", ModFilename: "USSEP.zip"},
				{ModName: "Old", ModFilename: "Old.7z"},
			},
		},
	}
	known := &fakeKnown{known: legacy.KnownMods{"Old.7z": true}}
	imp := &fakeImporter{}
	open := func(source string) (*trace.Trace, error) {
		return trace.Open(fsops.NewRealFS(), imports, source, clock.NewFakeClock(time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)))
	}
	cfg := Config{
		GameID:       "skyrimse",
		LegacyBase:   "/legacy",
		InstallPath:  "/target/mods",
		DownloadPath: "/target/downloads",
		ProfileName:  "Imported NMM Profile",
	}
	s := NewSession(cfg, src, known, imp, open, nil)
	imp.session = s
	return &harness{session: s, source: src, known: known, importer: imp}
}

func mustState(t *testing.T, s *Session, want State) {
	t.Helper()
	if got := s.State(); got != want {
		t.Fatalf("state = %s, want %s", got, want)
	}
}

func TestSession_HappyPath(t *testing.T) {
	h := newHarness(t)
	s := h.session
	ctx := context.Background()

	mustState(t, s, Idle)
	if err := s.Discover(ctx); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	mustState(t, s, Discovering)
	if len(s.Instances()) != 2 || s.Selected() != 0 {
		t.Errorf("instances = %v, selected = %d", s.Instances(), s.Selected())
	}

	if err := s.Parse(ctx); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	mustState(t, s, Parsing)
	if len(s.Mods()) != 3 {
		t.Fatalf("got %d mods, want 3", len(s.Mods()))
	}

	// Already managed mods are not selected by default.
	if !s.Enabled("SkyUI.7z") || !s.Enabled("USSEP.zip") || s.Enabled("Old.7z") {
		t.Errorf("default selection wrong: SkyUI=%v USSEP=%v Old=%v",
			s.Enabled("SkyUI.7z"), s.Enabled("USSEP.zip"), s.Enabled("Old.7z"))
	}

	if err := s.SetEnabled("USSEP.zip", false); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}
	if err := s.SetEnabled("Old.7z", true); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}
	if err := s.SetTransferArchives(true); err != nil {
		t.Fatalf("SetTransferArchives failed: %v", err)
	}

	var progress []string
	if err := s.Start(ctx, func(name string, idx int) { progress = append(progress, name) }); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	mustState(t, s, Reviewed)

	if h.importer.stateSeen != Transferring {
		t.Errorf("state during import = %s, want transferring", h.importer.stateSeen)
	}
	if !h.importer.traceFound {
		t.Error("importer was not given an open trace")
	}
	if !reflect.DeepEqual(progress, []string{"SkyUI", "Old"}) {
		t.Errorf("progress = %v, want [SkyUI Old]", progress)
	}

	req := h.importer.req
	if req.VirtualInstallPath != filepath.Join("/nmm/a", "VirtualInstall") {
		t.Errorf("VirtualInstallPath = %q", req.VirtualInstallPath)
	}
	if req.LinkPath != filepath.Join("/links", "skyrimse", "NMMLink") {
		t.Errorf("LinkPath = %q", req.LinkPath)
	}
	if req.ModsPath != "/nmm/a/mods" || req.InstallPath != "/target/mods" || req.DownloadPath != "/target/downloads" {
		t.Errorf("unexpected paths: %+v", req)
	}
	if !req.TransferArchives || req.GameID != "skyrimse" || req.ProfileName != "Imported NMM Profile" {
		t.Errorf("unexpected request: %+v", req)
	}
	if len(req.Mods) != 2 || req.Mods[0].ArchiveID != "a-SkyUI.7z" {
		t.Errorf("request mods = %+v", req.Mods)
	}

	if s.Result() == nil || s.Result().ProfileID != "p1" || s.RunErr() != nil {
		t.Errorf("result = %+v, err = %v", s.Result(), s.RunErr())
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	mustState(t, s, Idle)
	if s.Result() != nil || len(s.Instances()) != 0 {
		t.Error("Reset should clear the session")
	}
}

func TestSession_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		setup func(s *Session)
		op    func(s *Session) error
	}{
		{name: "parse while idle", op: func(s *Session) error { return s.Parse(ctx) }},
		{name: "select while idle", op: func(s *Session) error { return s.Select(0) }},
		{name: "start while idle", op: func(s *Session) error { return s.Start(ctx, nil) }},
		{name: "reset while idle", op: func(s *Session) error { return s.Reset() }},
		{name: "set enabled while idle", op: func(s *Session) error { return s.SetEnabled("SkyUI.7z", true) }},
		{name: "set archives while idle", op: func(s *Session) error { return s.SetTransferArchives(true) }},
		{
			name:  "start while discovering",
			setup: func(s *Session) { _ = s.Discover(ctx) },
			op:    func(s *Session) error { return s.Start(ctx, nil) },
		},
		{
			name:  "discover twice",
			setup: func(s *Session) { _ = s.Discover(ctx) },
			op:    func(s *Session) error { return s.Discover(ctx) },
		},
		{
			name: "parse twice",
			setup: func(s *Session) {
				_ = s.Discover(ctx)
				_ = s.Parse(ctx)
			},
			op: func(s *Session) error { return s.Parse(ctx) },
		},
		{
			name: "cancel after review",
			setup: func(s *Session) {
				_ = s.Discover(ctx)
				_ = s.Parse(ctx)
				_ = s.Start(ctx, nil)
			},
			op: func(s *Session) error { return s.Cancel() },
		},
		{
			name: "start after review",
			setup: func(s *Session) {
				_ = s.Discover(ctx)
				_ = s.Parse(ctx)
				_ = s.Start(ctx, nil)
			},
			op: func(s *Session) error { return s.Start(ctx, nil) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newHarness(t).session
			if tt.setup != nil {
				tt.setup(s)
			}
			before := s.State()
			if err := tt.op(s); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("error = %v, want ErrInvalidTransition", err)
			}
			if s.State() != before {
				t.Errorf("state changed from %s to %s on invalid transition", before, s.State())
			}
		})
	}
}

func TestSession_DiscoverErrorsStayIdle(t *testing.T) {
	t.Run("no instances", func(t *testing.T) {
		h := newHarness(t)
		h.source.instances = []legacy.InstanceRoots{}

		err := h.session.Discover(context.Background())
		if !errors.Is(err, ErrNoInstances) {
			t.Fatalf("error = %v, want ErrNoInstances", err)
		}
		mustState(t, h.session, Idle)
		if h.session.ErrorMessage() == "" {
			t.Error("expected an inline error message")
		}
	})

	t.Run("discovery failure", func(t *testing.T) {
		h := newHarness(t)
		h.source.findErr = errors.New("permission denied")

		if err := h.session.Discover(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		mustState(t, h.session, Idle)

		// A later successful attempt clears the message.
		h.source.findErr = nil
		if err := h.session.Discover(context.Background()); err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		if h.session.ErrorMessage() != "" {
			t.Errorf("ErrorMessage() = %q, want empty", h.session.ErrorMessage())
		}
	})
}

func TestSession_ParseErrorAllowsOtherInstance(t *testing.T) {
	h := newHarness(t)
	s := h.session
	ctx := context.Background()

	if err := s.Discover(ctx); err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if err := s.Select(1); err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// Instance b has no virtual configuration.
	if err := s.Parse(ctx); !errors.Is(err, legacy.ErrNoVirtualConfig) {
		t.Fatalf("error = %v, want ErrNoVirtualConfig", err)
	}
	mustState(t, s, Discovering)
	if s.ErrorMessage() == "" {
		t.Error("expected an inline error message")
	}

	if err := s.Select(0); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if err := s.Parse(ctx); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	mustState(t, s, Parsing)
	if !h.source.gotKnown["Old.7z"] {
		t.Error("known mods not passed to the parser")
	}
}

func TestSession_SelectDiscardsParsedMods(t *testing.T) {
	h := newHarness(t)
	s := h.session
	ctx := context.Background()

	_ = s.Discover(ctx)
	_ = s.Parse(ctx)
	mustState(t, s, Parsing)

	if err := s.Select(5); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("Select(5) error = %v, want ErrInvalidSelection", err)
	}
	mustState(t, s, Parsing)

	if err := s.Select(1); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	mustState(t, s, Discovering)
	if len(s.Mods()) != 0 {
		t.Errorf("mods not discarded: %v", s.Mods())
	}
}

func TestSession_SetEnabledUnknownMod(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_ = s.Discover(context.Background())
	_ = s.Parse(context.Background())

	if err := s.SetEnabled("Missing.7z", true); !errors.Is(err, ErrUnknownMod) {
		t.Errorf("error = %v, want ErrUnknownMod", err)
	}
}

func TestSession_SetAllEnabled(t *testing.T) {
	h := newHarness(t)
	s := h.session
	_ = s.Discover(context.Background())
	_ = s.Parse(context.Background())

	if err := s.SetAllEnabled(true); err != nil {
		t.Fatalf("SetAllEnabled failed: %v", err)
	}
	if len(s.EnabledMods()) != 3 {
		t.Errorf("got %d enabled mods, want 3", len(s.EnabledMods()))
	}
	if err := s.SetAllEnabled(false); err != nil {
		t.Fatalf("SetAllEnabled failed: %v", err)
	}
	if len(s.EnabledMods()) != 0 {
		t.Errorf("got %d enabled mods, want 0", len(s.EnabledMods()))
	}
}

func TestSession_Cancel(t *testing.T) {
	for _, steps := range []int{0, 1, 2} {
		h := newHarness(t)
		s := h.session
		if steps >= 1 {
			_ = s.Discover(context.Background())
		}
		if steps >= 2 {
			_ = s.Parse(context.Background())
		}

		if err := s.Cancel(); err != nil {
			t.Errorf("Cancel after %d steps failed: %v", steps, err)
		}
		mustState(t, s, Idle)
	}
}

func TestSession_ImportFailureIsReviewed(t *testing.T) {
	h := newHarness(t)
	s := h.session
	h.importer.err = errors.New("catalog unavailable")

	_ = s.Discover(context.Background())
	_ = s.Parse(context.Background())

	if err := s.Start(context.Background(), nil); err == nil {
		t.Fatal("expected Start to return the import error")
	}
	mustState(t, s, Reviewed)
	if s.RunErr() == nil || s.Result() != nil {
		t.Errorf("RunErr = %v, Result = %+v", s.RunErr(), s.Result())
	}
	if s.LogFilePath() == "" {
		t.Error("the trace log should be reported after a failed import")
	}
}

func TestSession_TraceOpenFailure(t *testing.T) {
	h := newHarness(t)
	s := h.session
	s.open = func(string) (*trace.Trace, error) { return nil, errors.New("read-only filesystem") }

	_ = s.Discover(context.Background())
	_ = s.Parse(context.Background())

	if err := s.Start(context.Background(), nil); err == nil {
		t.Fatal("expected error when the trace cannot be opened")
	}
	mustState(t, s, Parsing)
	if s.ErrorMessage() == "" {
		t.Error("expected an inline error message")
	}
}

func TestState_String(t *testing.T) {
	want := map[State]string{
		Idle:         "idle",
		Discovering:  "discovering",
		Parsing:      "parsing",
		Transferring: "transferring",
		Reviewed:     "reviewed",
		State(99):    "unknown",
	}
	for state, name := range want {
		if state.String() != name {
			t.Errorf("State(%d).String() = %q, want %q", int(state), state.String(), name)
		}
	}
}
