package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the catalog's profiles",
	Long: `List the profiles the target catalog holds for the current game.

Every import creates one profile; profiles are listed oldest first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		profiles, err := a.catalog.ListProfiles(a.settings.Game)
		if err != nil {
			return err
		}

		views := make([]profileView, len(profiles))
		for i, p := range profiles {
			views[i] = newProfileView(p)
		}

		if ok, err := structuredOutput(views); ok {
			return err
		}

		PrintSection(fmt.Sprintf("Profiles for %s", a.settings.Game))
		if len(views) == 0 {
			PrintEmptyState("No profiles yet. Run 'modimport import' to create one.")
			return nil
		}

		rows := make([][]string, 0, len(views))
		for _, v := range views {
			rows = append(rows, []string{v.ID, v.Name, fmt.Sprint(v.Mods), humanize.Time(v.CreatedAt)})
		}
		PrintTable([]string{"ID", "Name", "Mods", "Created"}, rows)
		return nil
	},
}
