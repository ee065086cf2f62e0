package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"soloquest/internal/engine"
	"soloquest/internal/ui"
)

func newEditCmd() *cobra.Command {
	var text string
	var xp int
	var stats string

	cmd := &cobra.Command{
		Use:   "edit <quest-id>",
		Short: "Edit a quest; a completed quest is re-scored with the new values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" && xp == 0 && stats == "" {
				return errors.New("nothing to change: pass --text, --xp or --stats")
			}

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
			q, err := svc.QuestRepo().Get(ctx, id)
			if err != nil {
				return err
			}
			if q == nil {
				return fmt.Errorf("no quest matches %q", args[0])
			}

			in := engine.EditQuestInput{Text: q.Text, BaseXP: q.BaseXP}
			for _, st := range q.StatTypes {
				in.StatTypes = append(in.StatTypes, engine.StatType(st))
			}
			if text != "" {
				in.Text = text
			}
			if xp != 0 {
				in.BaseXP = xp
			}
			if stats != "" {
				in.StatTypes, err = parseQuestStats(stats)
				if err != nil {
					return err
				}
			}

			res, err := svc.EditQuest(ctx, id, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Good.Render(ui.IconQuest+" Updated"), res.Quest.Text,
				ui.Muted.Render(fmt.Sprintf("(%d XP)", res.Quest.BaseXP)))
			if res.Recompleted != nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Re-scored with current boosts:"))
				printCompleteResult(cmd.OutOrStdout(), res.Recompleted)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "New quest text")
	cmd.Flags().IntVar(&xp, "xp", 0, "New base XP")
	cmd.Flags().StringVarP(&stats, "stats", "s", "", "New comma-separated stats")

	return cmd
}
