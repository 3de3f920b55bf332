package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/modimport/internal/collate"
	"github.com/danieljhkim/modimport/internal/fsops"
	"github.com/danieljhkim/modimport/internal/legacy"
	"github.com/danieljhkim/modimport/internal/wizard"
)

var (
	modsInstance int
	modsSort     string
)

var modsCmd = &cobra.Command{
	Use:   "mods",
	Short: "List the mods of an installation",
	Long: `List the mods a Nexus Mod Manager installation manages.

Mods the target catalog already knows are marked as managed; an import skips
them unless they are selected explicitly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sortField, err := modSortField(modsSort)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		session, err := a.newSession("")
		if err != nil {
			return err
		}

		if err := session.Discover(cmd.Context()); err != nil {
			return err
		}
		if err := chooseInstance(session, modsInstance, false); err != nil {
			return err
		}
		if err := session.Parse(cmd.Context()); err != nil {
			return err
		}

		views := newModViews(a.fs, session)
		if sortField != nil {
			collate.SortBy(views, sortField)
		}

		if ok, err := structuredOutput(views); ok {
			return err
		}

		roots := session.Instances()[session.Selected()]
		PrintSection(fmt.Sprintf("Mods in %s", roots.VirtualPath))
		if len(views) == 0 {
			PrintEmptyState("No mods found")
			return nil
		}

		rows := make([][]string, 0, len(views))
		for _, v := range views {
			rows = append(rows, modRow(v))
		}
		PrintTable([]string{"Name", "Version", "Archive", "Size", "Category", "Status"}, rows)
		PrintInfo("")
		PrintInfo(fmt.Sprintf("  %s, %d already managed", PrintCount(len(views), "mod", "mods"), countManaged(views)))
		return nil
	},
}

func init() {
	modsCmd.Flags().IntVar(&modsInstance, "instance", 0, "Installation number from 'modimport instances' (default: first)")
	modsCmd.Flags().StringVar(&modsSort, "sort", "", "Sort by name, version or filename (default: as configured)")
}

// modSortField returns the field to sort by, or nil to keep document order.
func modSortField(name string) (func(modView) string, error) {
	switch name {
	case "":
		return nil, nil
	case "name":
		return func(v modView) string { return v.Name }, nil
	case "version":
		return func(v modView) string { return v.Version }, nil
	case "filename":
		return func(v modView) string { return v.Filename }, nil
	default:
		return nil, fmt.Errorf("invalid sort field %q: must be name, version or filename", name)
	}
}

func newModViews(fs fsops.FS, session *wizard.Session) []modView {
	mods := session.Mods()
	views := make([]modView, len(mods))
	for i, mod := range mods {
		views[i] = modView{
			Name:        mod.DisplayName(),
			Version:     mod.ModVersion,
			Filename:    mod.ModFilename,
			NexusID:     mod.NexusID,
			Category:    mod.CategoryID,
			Files:       len(mod.FileEntries),
			ArchiveSize: archiveSize(fs, mod),
			Managed:     mod.IsAlreadyManaged,
			Enabled:     session.Enabled(mod.ModFilename),
		}
	}
	return views
}

// archiveSize returns the size of the mod's archive, or 0 if it is missing.
func archiveSize(fs fsops.FS, mod legacy.ModEntry) int64 {
	info, err := fs.Stat(mod.ArchiveFile())
	if err != nil || info.IsDir() {
		return 0
	}
	return info.Size()
}

func modRow(v modView) []string {
	size := "missing"
	if v.ArchiveSize > 0 {
		size = humanize.Bytes(uint64(v.ArchiveSize))
	}
	category := "-"
	if v.Category != nil {
		category = fmt.Sprint(*v.Category)
	}
	status := "new"
	if v.Managed {
		status = "managed"
	}
	version := v.Version
	if version == "" {
		version = "-"
	}
	return []string{v.Name, version, v.Filename, size, category, status}
}

func countManaged(views []modView) int {
	n := 0
	for _, v := range views {
		if v.Managed {
			n++
		}
	}
	return n
}
