package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"soloquest/internal/ui"
)

func newUndoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo <quest-id>",
		Short: "Revert a completed quest and take back its XP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveQuestID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			res, err := svc.UncompleteQuest(ctx, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				ui.Warn.Render(ui.IconUndo+" Quest reverted"),
				ui.Muted.Render(fmt.Sprintf("-%d XP", res.XPDeducted)))
			if res.LevelDown {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n",
					ui.Warn.Render(fmt.Sprintf("Level down: %d -> %d", res.LevelBefore, res.LevelAfter)))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Consumed boosts are gone for good."))
			return nil
		},
	}
	return cmd
}
