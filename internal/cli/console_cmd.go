package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/alexanderramin/tempo/internal/scheduler"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// consoleChannel delivers console-owned reminders into the running
// program. Other owners go to fallback when set and are shown in the
// session, tagged with the owner, otherwise.
type consoleChannel struct {
	mu       sync.Mutex
	send     func(tea.Msg)
	fallback scheduler.MessageChannel
}

func (c *consoleChannel) attach(send func(tea.Msg)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.send = send
}

func (c *consoleChannel) Send(ctx context.Context, ownerID, text string) error {
	if ownerID != consoleOwner && c.fallback != nil {
		return c.fallback.Send(ctx, ownerID, text)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.send == nil {
		return errors.New("console is not running")
	}
	if ownerID != consoleOwner {
		text = "[" + ownerID + "] " + text
	}
	c.send(deliveryMsg{text: text})
	return nil
}

func newConsoleCmd(app *App) *cobra.Command {
	var noDispatch bool

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Chat with the bot locally",
		Long: `Open a local chat session that behaves like the Telegram bot. Due
reminders are delivered while the session is open: console reminders
into the session, others to Telegram when a token is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			ctx, cancel := context.WithCancel(parent)
			defer cancel()

			p := tea.NewProgram(
				newConsoleModel(app.Chat.Reply, consoleOwner),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)

			done := make(chan struct{})
			if noDispatch {
				close(done)
			} else {
				ch := &consoleChannel{}
				if app.Telegram != nil {
					ch.fallback = app.Telegram
				}
				ch.attach(p.Send)
				d := app.Dispatcher(ch)
				go func() {
					defer close(done)
					_ = d.Run(ctx)
				}()
			}

			_, err := p.Run()
			cancel()
			<-done
			if errors.Is(err, tea.ErrProgramKilled) && parent.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&noDispatch, "no-dispatch", false, "Do not deliver due reminders while the session is open")

	return cmd
}
