package root

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"soloquest/internal/document"
	"soloquest/internal/ui"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the current progression with an exported JSON document",
		Long:  "import validates the file, upgrades any legacy schema it finds, and replaces the whole store. A file that does not look like a progression document is rejected and nothing changes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := document.ParseImport(raw, time.Now().UTC(), nil)
			if err != nil {
				return err
			}
			if err := document.ReplaceStore(ctx, svc.DB(), doc); err != nil {
				return err
			}
			// Imported documents may carry boosts that already lapsed.
			if _, err := svc.SweepExpiredBoosts(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				ui.Good.Render(ui.IconScroll+" Imported"), args[0],
				ui.Muted.Render(fmt.Sprintf("(%d quests, %d life tasks, %d history entries)",
					len(doc.Todos), len(doc.MiscTodos), len(doc.History))))
			return nil
		},
	}
	return cmd
}
