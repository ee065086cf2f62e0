package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soloquest/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "sq",
	Short:         "soloquest: local-first RPG progression tracker",
	Long:          "soloquest tracks daily quests and one-off life tasks; completing them earns XP that levels up your profile and its strength, career and willpower stats.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newStatusCmd(),
		newAddCmd(),
		newDoCmd(),
		newUndoCmd(),
		newEditCmd(),
		newRmCmd(),
		newListCmd(),
		newLifeCmd(),
		newHistoryCmd(),
		newExportCmd(),
		newImportCmd(),
		newResetCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
