package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/modimport/internal/transfer"
	"github.com/danieljhkim/modimport/internal/wizard"
)

var (
	importInstance    int
	importArchives    bool
	importAll         bool
	importYes         bool
	importProfileName string
)

// errImportAborted is returned when the user declines the confirmation.
var errImportAborted = errors.New("import cancelled")

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the mods of an installation",
	Long: `Import the mods of a Nexus Mod Manager installation.

Each mod's files are copied into the target install directory. With
--archives, each mod's archive is also registered and copied into the target
download directory. A mod that fails does not stop the import; failures are
listed at the end together with the path of the import log. A new profile is
created with every imported mod enabled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		session, err := a.newSession(importProfileName)
		if err != nil {
			return err
		}

		interactive := !importYes && !jsonOutput && !yamlOutput
		ctx := cmd.Context()

		if err := session.Discover(ctx); err != nil {
			return err
		}
		if err := chooseInstance(session, importInstance, interactive); err != nil {
			return err
		}
		if err := session.Parse(ctx); err != nil {
			return err
		}
		if importAll {
			if err := session.SetAllEnabled(true); err != nil {
				return err
			}
		}
		if err := session.SetTransferArchives(importArchives); err != nil {
			return err
		}

		selected := session.EnabledMods()
		if interactive {
			PrintSection("Import")
			PrintLabelValue("Installation", session.Instances()[session.Selected()].VirtualPath)
			PrintLabelValue("Game", a.settings.Game)
			PrintLabelValue("Mods", fmt.Sprintf("%d of %d", len(selected), len(session.Mods())))
			PrintLabelValue("Archives", fmt.Sprint(importArchives))
			PrintLabelValue("Install path", a.settings.GameInstallPath())
			if importArchives {
				PrintLabelValue("Download path", a.settings.GameDownloadPath())
			}
			PrintInfo("")

			ok, err := promptConfirm(fmt.Sprintf("Import %s?", PrintCount(len(selected), "mod", "mods")))
			if err != nil {
				return err
			}
			if !ok {
				_ = session.Cancel()
				return errImportAborted
			}
		}

		total := len(selected)
		progress := func(name string, idx int) {
			if !jsonOutput && !yamlOutput {
				PrintInfo(fmt.Sprintf("  [%d/%d] %s", idx+1, total, name))
			}
		}

		if err := session.Start(ctx, progress); err != nil {
			if path := session.LogFilePath(); path != "" && !jsonOutput && !yamlOutput {
				PrintLabelValue("Log", path)
			}
			return err
		}

		return reportImport(session)
	},
}

func init() {
	importCmd.Flags().IntVar(&importInstance, "instance", 0, "Installation number from 'modimport instances' (default: ask, or first)")
	importCmd.Flags().BoolVar(&importArchives, "archives", false, "Also register and copy mod archives")
	importCmd.Flags().BoolVar(&importAll, "all", false, "Include mods the catalog already manages")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Do not ask for confirmation")
	importCmd.Flags().StringVar(&importProfileName, "profile-name", "", "Name of the profile to create (default from settings)")
}

// reportImport prints the outcome of a finished import.
func reportImport(session *wizard.Session) error {
	result := session.Result()
	if result == nil {
		return fmt.Errorf("import produced no result")
	}

	if ok, err := structuredOutput(newImportView(result)); ok {
		return err
	}

	PrintSeparator()
	if result.OK() {
		PrintSuccess(fmt.Sprintf("Imported %s into profile %s", PrintCount(len(result.Outcomes), "mod", "mods"), result.ProfileID))
	} else {
		PrintWarning("There were errors")
		PrintSubsection("The following mods or archives could not be imported:")
		PrintList(result.Failed, 2)
	}
	PrintLabelValue("Log", result.LogFilePath)
	printOutcomeSummary(result.Outcomes)
	return nil
}

func printOutcomeSummary(outcomes []transfer.Outcome) {
	copied := 0
	for _, o := range outcomes {
		copied += o.Copied
	}
	PrintLabelValue("Files copied", fmt.Sprint(copied))
}

// promptConfirm asks a yes/no question.
var promptConfirm = func(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Import").
				Negative("Cancel").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("failed to confirm import: %w", err)
	}
	return ok, nil
}
