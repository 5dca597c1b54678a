package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/scheduler"
	"github.com/spf13/cobra"
)

// writerChannel prints deliveries instead of sending them. dispatch uses it
// when no Telegram token is configured.
type writerChannel struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *writerChannel) Send(_ context.Context, ownerID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "%s %s\n", formatter.Dim("→ "+ownerID+":"), text)
	return err
}

func newDispatchCmd(app *App) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Deliver due reminders without answering chat messages",
		Long: `Poll the store and deliver due reminders. Deliveries go to Telegram
when a token is configured and are printed otherwise. With --once a
single pass runs for the current minute and its summary is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ch scheduler.MessageChannel = &writerChannel{w: cmd.OutOrStdout()}
			if app.Telegram != nil {
				ch = app.Telegram
			}
			d := app.Dispatcher(ch)

			if once {
				rep := d.Tick(cmd.Context())
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTick(rep))
				return rep.Err
			}

			err := d.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single pass and exit")

	return cmd
}
