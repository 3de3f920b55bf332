package legacy

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/danieljhkim/modimport/internal/collate"
	"github.com/danieljhkim/modimport/internal/fsops"
)

// UserConfigName is the settings file inside each instance/version directory.
const UserConfigName = "user.config"

// discoveryConcurrency bounds the parallel user.config reads.
const discoveryConcurrency = 8

// Reader reads legacy installations through an fsops.FS. It never writes.
type Reader struct {
	fs     fsops.FS
	logger *log.Logger
	newID  func() string
}

// NewReader creates a Reader. A nil logger discards diagnostics.
func NewReader(fs fsops.FS, logger *log.Logger) *Reader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reader{
		fs:     fs,
		logger: logger,
		newID:  func() string { return xid.New().String() },
	}
}

// WithIDGenerator replaces the archive id generator.
func (r *Reader) WithIDGenerator(gen func() string) *Reader {
	r.newID = gen
	return r
}

// FindInstances lists every legacy installation under base that configures
// gameID, deduplicated by case-folded virtual folder with the first
// occurrence kept.
//
// base is expected to hold <instance>/<version>/user.config. A missing base
// yields an empty list and no error. An instance or version that cannot be
// read is skipped; any other failure listing base is returned.
func (r *Reader) FindInstances(ctx context.Context, base, gameID string) ([]InstanceRoots, error) {
	entries, err := r.fs.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Debug("legacy base directory not found", "base", base)
			return []InstanceRoots{}, nil
		}
		return nil, fmt.Errorf("failed to read legacy base directory: %w", err)
	}

	var instances []string
	for _, entry := range entries {
		instancePath := filepath.Join(base, entry.Name())
		info, err := r.fs.Stat(instancePath)
		if err != nil {
			r.logger.Debug("skipping unreadable instance", "path", instancePath, "err", err)
			continue
		}
		if info.IsDir() {
			instances = append(instances, instancePath)
		}
	}

	// One slot per instance keeps results in listing order regardless of
	// which read finishes first.
	slots := make([][]InstanceRoots, len(instances))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(discoveryConcurrency)
	for i, instancePath := range instances {
		i, instancePath := i, instancePath
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = r.scanInstance(instancePath, gameID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("instance discovery interrupted: %w", err)
	}

	var found []InstanceRoots
	for _, roots := range slots {
		found = append(found, roots...)
	}

	return collate.Dedup(found, func(r InstanceRoots) string { return r.VirtualPath }), nil
}

// scanInstance parses user.config in every version directory of one instance.
func (r *Reader) scanInstance(instancePath, gameID string) []InstanceRoots {
	versions, err := r.fs.ReadDir(instancePath)
	if err != nil {
		r.logger.Debug("skipping instance", "path", instancePath, "err", err)
		return nil
	}

	var out []InstanceRoots
	for _, version := range versions {
		configPath := filepath.Join(instancePath, version.Name(), UserConfigName)
		data, err := r.fs.ReadFile(configPath)
		if err != nil {
			r.logger.Debug("skipping version", "config", configPath, "err", err)
			continue
		}
		roots, ok := ParseInstanceRoots(data, gameID)
		if !ok {
			r.logger.Debug("no roots configured", "config", configPath, "game", gameID)
			continue
		}
		r.logger.Debug("found legacy instance", "config", configPath, "virtual", roots.VirtualPath)
		out = append(out, roots)
	}
	return out
}
