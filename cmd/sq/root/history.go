package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"soloquest/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var clear bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the completion ledger, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if clear {
				if err := svc.ClearHistory(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconTrash+" History cleared"))
				return nil
			}

			snap, err := svc.Snapshot(ctx)
			if err != nil {
				return err
			}
			if len(snap.History) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No completions recorded yet."))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconScroll, "History"))
			shown := 0
			for _, day := range snap.History {
				if limit > 0 && shown >= limit {
					break
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
					ui.H2.Render(day.Date), ui.Gold.Render(fmt.Sprintf("+%d XP", day.TotalXP)))
				for _, e := range day.Entries {
					if limit > 0 && shown >= limit {
						break
					}
					line := fmt.Sprintf("  %s %s %s", e.CompletedAt.Local().Format("15:04"), e.Text,
						ui.Muted.Render(fmt.Sprintf("+%d XP", e.TotalXP)))
					if e.BoostXP > 0 {
						line += " " + ui.Gold.Render(fmt.Sprintf("(%d base +%d boost)", e.BaseXP, e.BoostXP))
					}
					fmt.Fprintln(cmd.OutOrStdout(), line)
					shown++
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Wipe the ledger")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most n entries")

	return cmd
}
