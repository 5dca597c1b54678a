package cli

import (
	"errors"
	"strings"

	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func tempoHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// reminderDraft holds the raw answers of the add form.
type reminderDraft struct {
	Text string
	At   string
	Days string
}

func reminderForm(d *reminderDraft) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Text").
				Placeholder("выпить воды").
				Value(&d.Text).
				Validate(validateRequired),
			huh.NewInput().
				Title("Time (HH:MM)").
				Placeholder("09:00").
				Value(&d.At).
				Validate(validateClock),
			huh.NewInput().
				Title("Days").
				Description("Blank for a one-shot reminder; пн,ср,пт or ежедневно to repeat").
				Value(&d.Days).
				Validate(validateOptionalDays),
		),
	).WithTheme(tempoHuhTheme()).WithShowHelp(false)
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func validateClock(s string) error {
	if _, err := domain.ParseClockTime(s); err != nil {
		return errors.New("use HH:MM")
	}
	return nil
}

func validateOptionalDays(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := domain.ParseWeekdaySet(s)
	return err
}
