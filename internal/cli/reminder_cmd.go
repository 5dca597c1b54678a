package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/remindparse"
	"github.com/spf13/cobra"
)

func newReminderCmd(app *App) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:     "reminder",
		Aliases: []string{"r"},
		Short:   "Manage stored reminders",
	}
	cmd.PersistentFlags().StringVar(&owner, "owner", consoleOwner, "Owner (chat) ID")

	cmd.AddCommand(
		newReminderAddCmd(app, &owner),
		newReminderListCmd(app, &owner),
		newReminderRemoveCmd(app, &owner),
	)

	return cmd
}

func newReminderAddCmd(app *App, owner *string) *cobra.Command {
	var at string
	var days domain.WeekdaySet

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Create a reminder",
		Long: `Create a reminder. Without --at the text is parsed as a natural-language
request ("напомни завтра в 7 утра встать"). With --at the text is the
reminder itself and --days makes it recurring. With no arguments on a
terminal an interactive form is shown.`,
		Example: `  tempo reminder add "напоминай по будням в 8:00 делать зарядку"
  tempo reminder add --at 07:30 --days пн,ср,пт "спортзал"
  tempo reminder add --owner 123456789 --at 21:00 "выключить плиту"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			text := strings.TrimSpace(strings.Join(args, " "))

			if text == "" && at == "" {
				if !app.interactive() {
					return errors.New("reminder text is required")
				}
				draft := reminderDraft{}
				if err := reminderForm(&draft).Run(); err != nil {
					return err
				}
				text, at = draft.Text, draft.At
				if strings.TrimSpace(draft.Days) != "" {
					parsed, err := domain.ParseWeekdaySet(draft.Days)
					if err != nil {
						return err
					}
					days = parsed
				}
			}

			if at == "" {
				if cmd.Flags().Changed("days") {
					return errors.New("--days needs --at")
				}
				res, err := app.Reminders.CreateFromText(ctx, *owner, text)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatCreated(res.Reminder))
				if res.Parse.TimeTag == remindparse.TagDefault {
					fmt.Fprintln(out, formatter.Dim("No time found; using the default fire time."))
				}
				return nil
			}

			r, err := addExplicit(ctx, app, *owner, at, days, text)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatCreated(r))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Fire time HH:MM")
	weekdaysVar(cmd.Flags(), &days, "days", "Repeat on these days (пн,вт,... or ежедневно)")

	return cmd
}

func addExplicit(ctx context.Context, app *App, owner, at string, days domain.WeekdaySet, text string) (*domain.Reminder, error) {
	clock, err := domain.ParseClockTime(at)
	if err != nil {
		return nil, err
	}
	if days.IsEmpty() {
		return app.Reminders.CreateOneShot(ctx, owner, clock, text)
	}
	return app.Reminders.CreateRecurring(ctx, owner, clock, days, text)
}

func newReminderListCmd(app *App, owner *string) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List active reminders",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reminders, err := app.Reminders.ListActive(cmd.Context(), *owner)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatReminderList(reminders, app.now().Location()))
			return nil
		},
	}
}

func newReminderRemoveCmd(app *App, owner *string) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a reminder",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid reminder id %q", args[0])
			}
			if err := app.Reminders.Delete(cmd.Context(), *owner, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted reminder #%d\n", id)
			return nil
		},
	}
}
