package cli

import (
	"context"
	"errors"

	"github.com/alexanderramin/tempo/internal/telegram"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the reminder dispatcher",
		Long: `Long-poll the Telegram Bot API for messages, answer them, and
deliver due reminders every poll interval until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Telegram == nil {
				return errors.New("telegram token is not configured (set telegram.token or TEMPO_TELEGRAM_TOKEN)")
			}
			return runServe(cmd.Context(), app)
		},
	}
}

// runServe runs the dispatcher and the inbound poller side by side. When
// either stops the other is cancelled; a cancelled parent context is a
// clean shutdown.
func runServe(ctx context.Context, app *App) error {
	bot := app.Telegram
	d := app.Dispatcher(bot)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.Run(gctx)
	})
	g.Go(func() error {
		return bot.Poll(gctx, func(ctx context.Context, m telegram.Message) {
			app.Chat.Deliver(ctx, bot, m.OwnerID(), m.Text)
		})
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
