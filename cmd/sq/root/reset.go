package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"soloquest/internal/document"
	"soloquest/internal/ui"
)

func newResetCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Run the daily reset now, pruning completed quests",
		Long:  "reset normally happens on the first command of a new calendar day. Running it by hand prunes completed quests only when the stored reset date differs from today. With --all, every quest, life task, boost, history entry and XP point is wiped back to a fresh profile.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if all {
				if err := document.ReplaceStore(ctx, svc.DB(), document.Default(time.Now().UTC())); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconTrash+" All progress wiped; fresh profile created."))
				return nil
			}

			pruned, reset, err := svc.DailyResetIfNeeded(ctx)
			if err != nil {
				return err
			}
			if !reset {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Already reset today; nothing to do."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s pruned %d completed quest(s)\n",
				ui.Good.Render(ui.IconSparkle+" New day!"), pruned)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Wipe everything back to a fresh profile")

	return cmd
}
