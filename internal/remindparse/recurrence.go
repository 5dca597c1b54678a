package remindparse

import (
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
)

// Classify decides whether text asks for a one-shot or a recurring reminder.
//
// A recurrence keyword (whole word) or any weekday mention makes the request
// recurring. A minute offset ("через 15 минут") always wins and forces
// one-shot, whatever else the sentence says.
func Classify(text string) domain.Kind {
	if IsMinuteOffset(text) {
		return domain.KindOneShot
	}
	toks := tokenize(text)
	for _, t := range toks {
		if recurrenceKeywords[t.word] {
			return domain.KindRecurring
		}
	}
	if !DetectWeekdays(text).IsEmpty() {
		return domain.KindRecurring
	}
	return domain.KindOneShot
}

// DetectWeekdays collects every weekday mentioned in text, including group
// words like "по будням". Duplicates collapse.
func DetectWeekdays(text string) domain.WeekdaySet {
	var set domain.WeekdaySet
	for _, t := range tokenize(text) {
		for _, d := range weekdaysIn(t.word) {
			set = set.Add(d)
		}
	}
	return set
}

func weekdaysIn(word string) []domain.Weekday {
	if word == "" {
		return nil
	}
	if d, ok := weekdayWords[word]; ok {
		return []domain.Weekday{d}
	}
	for _, ws := range weekdayStems {
		if strings.Contains(word, ws.stem) {
			return ws.days
		}
	}
	return nil
}
