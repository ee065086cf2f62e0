package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"soloquest/internal/engine"
	"soloquest/internal/ui"
)

func newLifeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "life",
		Short: "Manage one-off life tasks that grant XP boosts",
	}
	cmd.AddCommand(
		newLifeListCmd(),
		newLifeAddCmd(),
		newLifeDoCmd(),
		newLifeEditCmd(),
		newLifeRmCmd(),
	)
	return cmd
}

func newLifeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List life tasks",
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
			if len(snap.LifeTasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No life tasks yet. Add one with: sq life add"))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconLife, "Life tasks"))
			for _, t := range snap.LifeTasks {
				line := fmt.Sprintf("%s %s %s %s",
					ui.Checkbox(t.Completed), ui.Muted.Render("#"+shortID(t.ID)), t.Text,
					ui.Gold.Render(fmt.Sprintf("+%d%% %s %s", t.BoostPercent, ui.StatIcon(t.BoostStat), t.BoostStat)))
				if t.Completed && t.BoostExpiresAt != nil {
					line += " " + ui.Muted.Render("boost until "+t.BoostExpiresAt.Local().Format("Jan 2 15:04"))
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newLifeAddCmd() *cobra.Command {
	var diff int
	var stat string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a life task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			boostStat, err := engine.ParseStatType(stat)
			if err != nil {
				return err
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.CreateLifeTask(ctx, engine.CreateLifeTaskInput{
				Text:       args[0],
				Difficulty: engine.Difficulty(diff),
				BoostStat:  boostStat,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				ui.Good.Render(ui.IconLife+" Added"), t.Text,
				ui.Gold.Render(fmt.Sprintf("(+%d%% %s on completion)",
					engine.BoostPercentForDifficulty(engine.Difficulty(t.Difficulty)), t.BoostStat)),
				ui.Muted.Render("#"+shortID(t.ID)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&diff, "diff", "d", 3, "Difficulty (1-5), sets the boost size")
	cmd.Flags().StringVarP(&stat, "stat", "s", "", "Stat the boost applies to")
	_ = cmd.MarkFlagRequired("stat")

	return cmd
}

func newLifeDoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "do <task-id>",
		Short: "Complete a life task and receive its boost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveLifeTaskID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			res, err := svc.CompleteLifeTask(ctx, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n",
				ui.Good.Render(ui.IconDone+" Life task complete!"),
				ui.Gold.Render(fmt.Sprintf("%s +%d%% %s boost until %s",
					ui.IconBolt, res.Boost.Percentage, res.Boost.StatType,
					res.Boost.ExpiresAt.Local().Format("Jan 2 15:04"))))
			return nil
		},
	}
}

func newLifeEditCmd() *cobra.Command {
	var text string
	var diff int
	var stat string

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a life task; a granted boost is replaced with the new values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveLifeTaskID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			t, err := svc.LifeTaskRepo().Get(ctx, id)
			if err != nil {
				return err
			}
			if t == nil {
				return fmt.Errorf("no life task matches %q", args[0])
			}

			in := engine.CreateLifeTaskInput{
				Text:       t.Text,
				Difficulty: engine.Difficulty(t.Difficulty),
				BoostStat:  engine.StatType(t.BoostStat),
			}
			if text != "" {
				in.Text = text
			}
			if diff != 0 {
				in.Difficulty = engine.Difficulty(diff)
			}
			if stat != "" {
				in.BoostStat, err = engine.ParseStatType(stat)
				if err != nil {
					return err
				}
			}

			res, err := svc.EditLifeTask(ctx, id, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconLife+" Updated"), res.Task.Text)
			if res.Regranted != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n",
					ui.Gold.Render(fmt.Sprintf("%s boost replaced: +%d%% %s until %s",
						ui.IconBolt, res.Regranted.Percentage, res.Regranted.StatType,
						res.Regranted.ExpiresAt.Local().Format("Jan 2 15:04"))))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "New task text")
	cmd.Flags().IntVarP(&diff, "diff", "d", 0, "New difficulty (1-5)")
	cmd.Flags().StringVarP(&stat, "stat", "s", "", "New boost stat")

	return cmd
}

func newLifeRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a life task and revoke any boost it granted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveLifeTaskID(ctx, svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteLifeTask(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s life task %s\n",
				ui.Warn.Render(ui.IconTrash+" Deleted"), ui.Muted.Render("#"+shortID(id)))
			return nil
		},
	}
}
