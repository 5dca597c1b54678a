package cli

import (
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/spf13/pflag"
)

// weekdaysValue adapts a domain.WeekdaySet to a pflag.Value so flags accept
// "пн,ср,пт", full day names, or "ежедневно".
type weekdaysValue struct {
	set *domain.WeekdaySet
}

func (v weekdaysValue) String() string {
	if v.set == nil {
		return ""
	}
	return v.set.String()
}

func (v weekdaysValue) Set(s string) error {
	days, err := domain.ParseWeekdaySet(s)
	if err != nil {
		return err
	}
	*v.set = days
	return nil
}

func (weekdaysValue) Type() string { return "weekdays" }

func weekdaysVar(fs *pflag.FlagSet, p *domain.WeekdaySet, name, usage string) {
	fs.Var(weekdaysValue{set: p}, name, usage)
}
