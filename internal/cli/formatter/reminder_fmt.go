package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/remindparse"
	"github.com/alexanderramin/tempo/internal/scheduler"
	"github.com/charmbracelet/lipgloss"
)

// ScheduleLabel describes when a reminder fires, e.g. "daily" or "пн,ср".
func ScheduleLabel(req domain.ReminderRequest) string {
	switch s := req.Schedule.(type) {
	case domain.Recurring:
		if s.Days.IsEveryDay() {
			return "daily"
		}
		return s.Days.String()
	default:
		if d, ok := req.DelayMinutes(); ok {
			return fmt.Sprintf("once (+%dm)", d)
		}
		return "once"
	}
}

// FormatReminderList renders active reminders as a table.
func FormatReminderList(reminders []*domain.Reminder, loc *time.Location) string {
	if len(reminders) == 0 {
		return Dim("No active reminders.") + "\n"
	}
	rows := make([][]string, 0, len(reminders))
	for _, r := range reminders {
		rows = append(rows, []string{
			StyleBold.Render(strconv.FormatInt(r.ID, 10)),
			r.FireTime.String(),
			KindStyle(r.Kind()).Render(ScheduleLabel(r.ReminderRequest)),
			r.Payload,
			Dim(r.CreatedAt.In(loc).Format("2006-01-02 15:04")),
		})
	}
	return RenderTable([]string{"ID", "TIME", "SCHEDULE", "TEXT", "CREATED"}, rows)
}

// FormatCreated is the confirmation line printed after an insert.
func FormatCreated(r *domain.Reminder) string {
	return fmt.Sprintf("%s reminder #%d at %s %s: %s\n",
		StyleGreen.Render("Created"), r.ID, r.FireTime, ScheduleLabel(r.ReminderRequest), r.Payload)
}

// FormatParse renders a dry-run parse as a labelled box.
func FormatParse(text string, res remindparse.Result, now time.Time) string {
	req := res.Request
	var b strings.Builder
	field := func(name, value string) {
		fmt.Fprintf(&b, "%s %s\n", StyleDim.Render(fmt.Sprintf("%-9s", name)), value)
	}
	field("input", text)
	field("now", now.Format("2006-01-02 15:04 MST"))
	field("kind", KindStyle(req.Kind()).Render(string(req.Kind())))
	field("time", StyleBold.Render(req.FireTime.String()))
	field("grammar", tagLabel(res.TimeTag))
	if req.Kind() == domain.KindRecurring {
		days := req.Days().String()
		if res.DaysDefaulted {
			days += Dim(" (no weekday named)")
		}
		field("days", days)
	}
	if d, ok := req.DelayMinutes(); ok {
		field("delay", fmt.Sprintf("%d min", d))
	}
	payload := req.Payload
	if payload == "" {
		payload = StyleRed.Render("(empty)")
	} else if res.PayloadFallback {
		payload += Dim(" (fallback)")
	}
	field("payload", payload)

	return renderBox("parse", strings.TrimRight(b.String(), "\n"))
}

func tagLabel(tag remindparse.TimeTag) string {
	if tag == remindparse.TagDefault {
		return StyleYellow.Render(string(tag))
	}
	return string(tag)
}

// FormatTick summarizes one dispatcher pass.
func FormatTick(rep scheduler.TickReport) string {
	if rep.Err != nil {
		return fmt.Sprintf("%s %s tick skipped: %v\n",
			StyleRed.Render("●"), rep.At.Format("15:04"), rep.Err)
	}
	return fmt.Sprintf("%s %s due=%d %s %s %s\n",
		StyleGreen.Render("●"), rep.At.Format("15:04"), rep.Due,
		StatusIndicator(domain.DeliverySent)+"="+strconv.Itoa(rep.Sent),
		StatusIndicator(domain.DeliveryFailed)+"="+strconv.Itoa(rep.Failed),
		StatusIndicator(domain.DeliverySkipped)+"="+strconv.Itoa(rep.Skipped))
}

func renderBox(title, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2)
	return box.Render(StyleHeader.Render(strings.ToUpper(title))+"\n\n"+content) + "\n"
}
