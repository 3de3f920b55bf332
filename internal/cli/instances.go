package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/modimport/internal/legacy"
	"github.com/danieljhkim/modimport/internal/wizard"
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List Nexus Mod Manager installations",
	Long: `Find the Nexus Mod Manager installations configured for the current game.

Installations are read from the legacy manager's per-user settings. Entries
pointing at the same virtual folder, ignoring case, are shown once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		session, err := a.newSession("")
		if err != nil {
			return err
		}

		instances, err := discover(cmd, session)
		if err != nil {
			return err
		}

		if ok, err := structuredOutput(newInstanceViews(instances)); ok {
			return err
		}

		PrintSection(fmt.Sprintf("Installations for %s", a.settings.Game))
		if len(instances) == 0 {
			PrintEmptyState("No Nexus Mod Manager installation found")
			return nil
		}
		rows := make([][]string, 0, len(instances))
		for _, v := range newInstanceViews(instances) {
			link := v.LinkPath
			if link == "" {
				link = "-"
			}
			rows = append(rows, []string{fmt.Sprint(v.Index), v.VirtualPath, link, v.ModsPath})
		}
		PrintTable([]string{"#", "Virtual", "Link", "Mods"}, rows)
		return nil
	},
}

// discover runs discovery. Finding nothing is not an error.
func discover(cmd *cobra.Command, session *wizard.Session) ([]legacy.InstanceRoots, error) {
	if err := session.Discover(cmd.Context()); err != nil {
		if errors.Is(err, wizard.ErrNoInstances) {
			return []legacy.InstanceRoots{}, nil
		}
		return nil, err
	}
	return session.Instances(), nil
}

// chooseInstance selects the installation to work with. index is 1-based;
// 0 means the only installation, or asks when there are several and
// prompting is allowed.
func chooseInstance(session *wizard.Session, index int, interactive bool) error {
	instances := session.Instances()

	switch {
	case index > 0:
		return session.Select(index - 1)
	case len(instances) > 1 && interactive:
		choice, err := promptInstance(instances)
		if err != nil {
			return err
		}
		return session.Select(choice)
	default:
		return session.Select(0)
	}
}

// promptInstance asks which installation to use.
var promptInstance = func(instances []legacy.InstanceRoots) (int, error) {
	options := make([]huh.Option[int], len(instances))
	for i, inst := range instances {
		options[i] = huh.NewOption(inst.VirtualPath, i)
	}

	var choice int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Which Nexus Mod Manager installation should be imported?").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return 0, fmt.Errorf("failed to select installation: %w", err)
	}
	return choice, nil
}
