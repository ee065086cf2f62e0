package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"soloquest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show profile level, stats and active boosts",
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

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconSparkle, "Profile"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Level", snap.Profile.Level))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("XP", fmt.Sprintf("%d/%d this level (%d total) %s",
				snap.Profile.CurrentXP, snap.Profile.MaxXP, snap.TotalXP,
				ui.ProgressBar(snap.Profile.CurrentXP, snap.Profile.MaxXP, 24))))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Pending quests", snap.PendingQuests))
			fmt.Fprintln(cmd.OutOrStdout(), "")

			fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render("📊 Stats"))
			for _, sp := range snap.Stats {
				line := fmt.Sprintf("- %s %s: lvl %d (%d/%d XP) %s",
					ui.StatIcon(string(sp.Stat)), sp.Stat, sp.Level.Level,
					sp.Level.CurrentXP, sp.Level.MaxXP,
					ui.ProgressBar(sp.Level.CurrentXP, sp.Level.MaxXP, 16))
				if sp.BoostPercent > 0 {
					line += " " + ui.Gold.Render(fmt.Sprintf("+%d%% boost", sp.BoostPercent))
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			if len(snap.ActiveBoosts) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "")
				fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render(ui.IconBolt+" Active boosts"))
				for _, b := range snap.ActiveBoosts {
					fmt.Fprintf(cmd.OutOrStdout(), "- +%d%% %s %s %s\n",
						b.Percentage, b.StatType,
						ui.Muted.Render("from "+b.SourceText),
						ui.Muted.Render("until "+b.ExpiresAt.Local().Format("Jan 2 15:04")))
				}
			}
			return nil
		},
	}
	return cmd
}
