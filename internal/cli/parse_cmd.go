package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newParseCmd(app *App) *cobra.Command {
	var nowStr string

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Show how a reminder request would be understood, without saving it",
		Example: `  tempo parse "напомни завтра в 7 утра встать"
  tempo parse --now 2026-10-17T10:50:00+03:00 "напомни через 15 минут позвонить"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			now := app.now()
			if nowStr == "" {
				res := app.Reminders.Preview(text)
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatParse(text, res, now))
				return nil
			}

			t, err := time.Parse(time.RFC3339, nowStr)
			if err != nil {
				return fmt.Errorf("invalid --now %q: %w", nowStr, err)
			}
			now = t.In(now.Location())
			res := app.Parser.Parse(text, now)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatParse(text, res, now))
			return nil
		},
	}

	cmd.Flags().StringVar(&nowStr, "now", "", "Reference time (RFC3339) for relative expressions")

	return cmd
}
