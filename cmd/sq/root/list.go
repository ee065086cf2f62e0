package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"soloquest/internal/ui"
)

func newListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List today's quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := svc.Snapshot(ctx)
			if err != nil {
				return err
			}

			if len(snap.Quests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No quests yet. Add one with: sq add"))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconQuest, "Quests"))
			for _, q := range snap.Quests {
				if q.Completed && !all {
					continue
				}
				var icons []string
				for _, st := range q.StatTypes {
					icons = append(icons, ui.StatIcon(st))
				}
				line := fmt.Sprintf("%s %s %s %s %s",
					ui.Checkbox(q.Completed), ui.Muted.Render("#"+shortID(q.ID)),
					q.Text, ui.Muted.Render(fmt.Sprintf("%d XP", q.BaseXP)),
					strings.Join(icons, ""))
				if q.BoostPercent > 0 {
					line += " " + ui.Gold.Render(fmt.Sprintf("+%d%% (+%d XP)", q.BoostPercent, q.BoostXP))
				}
				if q.Completed && q.AwardedXP != nil {
					line += " " + ui.Muted.Render(fmt.Sprintf("awarded %d XP", *q.AwardedXP))
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed quests")

	return cmd
}
