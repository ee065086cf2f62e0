package root

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"soloquest/internal/engine"
	"soloquest/internal/ui"
)

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <quest-id>",
		Short: "Complete a quest and collect its XP",
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
			res, err := svc.CompleteQuest(ctx, id)
			if err != nil {
				return err
			}
			printCompleteResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	return cmd
}

func printCompleteResult(out io.Writer, res *engine.CompleteQuestResult) {
	award := fmt.Sprintf("+%d XP", res.XPAwarded)
	if res.BoostXP > 0 {
		award = fmt.Sprintf("+%d XP (%d base +%d%% boost)", res.XPAwarded, res.BaseXP, res.BoostPercent)
	}
	fmt.Fprintf(out, "%s %s\n", ui.Good.Render(ui.IconDone+" Quest complete!"), ui.Gold.Render(award))

	if res.ConsumedBoosts > 0 {
		fmt.Fprintf(out, "%s\n", ui.Muted.Render(fmt.Sprintf("%s consumed %d boost(s)", ui.IconBolt, res.ConsumedBoosts)))
	}
	if res.LevelUp {
		fmt.Fprintf(out, "%s %s\n", ui.BadgeLevelUp, ui.Gold.Render(fmt.Sprintf("%d -> %d", res.LevelBefore, res.LevelAfter)))
	}
	for _, up := range res.StatLevelUps {
		fmt.Fprintf(out, "%s %s leveled up: %d -> %d\n", ui.StatIcon(string(up.Stat)), up.Stat, up.From, up.To)
	}
	if res.AllQuestsDone {
		fmt.Fprintf(out, "%s\n", ui.Good.Render(ui.IconSparkle+" All quests done for today!"))
	}
}
