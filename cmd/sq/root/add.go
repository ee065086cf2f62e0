package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"soloquest/internal/engine"
	"soloquest/internal/ui"
)

func newAddCmd() *cobra.Command {
	var diff int
	var xp int
	var stats string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a daily quest",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("quest text is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			statTypes, err := parseQuestStats(stats)
			if err != nil {
				return err
			}

			baseXP := xp
			if baseXP == 0 {
				baseXP = engine.BaseXPForDifficulty(engine.Difficulty(diff))
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := svc.CreateQuest(ctx, engine.CreateQuestInput{
				Text:      args[0],
				BaseXP:    baseXP,
				StatTypes: statTypes,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				ui.Good.Render(ui.IconQuest+" Added"), q.Text,
				ui.Muted.Render(fmt.Sprintf("(%d XP)", q.BaseXP)),
				ui.Muted.Render("#"+shortID(q.ID)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&diff, "diff", "d", 3, "Difficulty preset for XP (1-5)")
	cmd.Flags().IntVar(&xp, "xp", 0, "Base XP (overrides --diff)")
	cmd.Flags().StringVarP(&stats, "stats", "s", "", "Comma-separated stats (strength,career,willpower)")

	return cmd
}
