package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayOf(t *testing.T) {
	// 2026-10-12 is a Monday.
	start := time.Date(2026, 10, 12, 12, 0, 0, 0, time.UTC)
	for i, want := range Week {
		assert.Equal(t, want, WeekdayOf(start.AddDate(0, 0, i)))
	}
}

func TestWeekdaySet_AddHasDedup(t *testing.T) {
	s := NewWeekdaySet(Monday, Wednesday, Monday)
	assert.True(t, s.Has(Monday))
	assert.True(t, s.Has(Wednesday))
	assert.False(t, s.Has(Sunday))
	assert.Equal(t, []Weekday{Monday, Wednesday}, s.Days())
	assert.Equal(t, "пн,ср", s.String())
}

func TestWeekdaySet_EveryDay(t *testing.T) {
	s := NewWeekdaySet(Week...)
	assert.Equal(t, EveryDay, s)
	assert.True(t, s.IsEveryDay())
	assert.Equal(t, 127, s.Mask())
	assert.True(t, WeekdaySet(0).IsEmpty())
}

func TestWeekdaySetFromMask_RoundTrip(t *testing.T) {
	s := NewWeekdaySet(Friday, Saturday)
	assert.Equal(t, s, WeekdaySetFromMask(s.Mask()))
	assert.Equal(t, s, WeekdaySetFromMask(s.Mask()|1<<9), "bits beyond Sunday are dropped")
}

func TestParseWeekdaySet(t *testing.T) {
	tests := []struct {
		in   string
		want WeekdaySet
	}{
		{"пн,ср,пт", NewWeekdaySet(Monday, Wednesday, Friday)},
		{"СБ ВС", NewWeekdaySet(Saturday, Sunday)},
		{"вт; чт", NewWeekdaySet(Tuesday, Thursday)},
		{"ежедневно", EveryDay},
		{"каждый день", EveryDay},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseWeekdaySet(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseWeekdaySet_Invalid(t *testing.T) {
	for _, in := range []string{"", "пн,xx", "monday"} {
		_, err := ParseWeekdaySet(in)
		assert.Error(t, err, in)
	}
}
