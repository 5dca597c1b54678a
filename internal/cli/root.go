package cli

import (
	"time"

	"github.com/alexanderramin/tempo/internal/chat"
	"github.com/alexanderramin/tempo/internal/remindparse"
	"github.com/alexanderramin/tempo/internal/scheduler"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/alexanderramin/tempo/internal/telegram"
	"github.com/spf13/cobra"
)

// consoleOwner owns reminders created from the local console and from
// `reminder` commands without --owner.
const consoleOwner = "console"

// App holds everything the commands need, wired once in main.
type App struct {
	Reminders service.ReminderService
	Parser    *remindparse.Parser
	Chat      *chat.Handler

	// Dispatcher builds a dispatcher that delivers through ch.
	Dispatcher func(ch scheduler.MessageChannel) *scheduler.Dispatcher

	// Telegram is nil when no bot token is configured.
	Telegram *telegram.Client

	Location *time.Location
	Now      func() time.Time

	// IsInteractive reports whether stdin is a terminal. Forms are only
	// shown when it returns true.
	IsInteractive func() bool
}

func (a *App) now() time.Time {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	loc := a.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "tempo" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tempo",
		Short:         "Natural-language reminder bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newConsoleCmd(app),
		newParseCmd(app),
		newDispatchCmd(app),
		newReminderCmd(app),
	)

	return root
}
