package remindparse

import (
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// TimeTag names the grammar that produced a fire time.
type TimeTag string

const (
	TagExact          TimeTag = "exact"
	Tag12h            TimeTag = "12h"
	TagSimple         TimeTag = "simple"
	TagRelative       TimeTag = "relative"
	TagFutureRelative TimeTag = "future_relative"
	TagDefault        TimeTag = "default"
)

// TimeMatch is a successful time-expression parse.
type TimeMatch struct {
	At  domain.ClockTime
	Tag TimeTag
	// Phrase is the matched fragment of the lower-cased input, kept so the
	// extractor can remove it from the payload.
	Phrase string
	// DelayMinutes is set only for TagFutureRelative.
	DelayMinutes *int
}

var (
	reExact    = mustWordRegexp(`(?:во?\s+)?(\d{1,2}):(\d{2})`)
	reHourOf   = mustWordRegexp(`(?:во?\s+)?(\d{1,2})\s*(?:(?:часов|часа|час)\s+)?(утра|дня|вечера|ночи)`)
	reSimple   = mustWordRegexp(`(?:во?\s+)?(\d{1,2})\s*(утром|вечером|ночью)`)
	reInFuture = mustWordRegexp(`через\s+(?:(\d{1,4})\s*)?(полчаса|минуту|минуты|минут|мин|часов|часа|час|ч)`)
	reInMinute = mustWordRegexp(`через\s+(?:\d{1,4}\s*)?(?:полчаса|минуту|минуты|минут|мин)`)
)

type timeRule struct {
	tag   TimeTag
	match func(text string, now time.Time) (TimeMatch, bool)
}

// timeRules are tried in order; the first rule that yields a valid time wins.
var timeRules = []timeRule{
	{TagExact, matchExact},
	{Tag12h, matchHourOfPeriod},
	{TagSimple, matchSimplePeriod},
	{TagRelative, matchRelativePeriod},
	{TagFutureRelative, matchFutureRelative},
}

// ParseTime extracts a fire time from free text. It reports false when no
// grammar matches; callers decide on the fallback.
func ParseTime(text string, now time.Time) (TimeMatch, bool) {
	text = strings.ToLower(text)
	for _, rule := range timeRules {
		if m, ok := rule.match(text, now); ok {
			m.Tag = rule.tag
			return m, true
		}
	}
	return TimeMatch{}, false
}

func matchExact(text string, _ time.Time) (TimeMatch, bool) {
	for _, sm := range reExact.findAll(text) {
		hour, _ := strconv.Atoi(sm[2])
		minute, _ := strconv.Atoi(sm[3])
		at, err := domain.NewClockTime(hour, minute)
		if err != nil {
			continue
		}
		return TimeMatch{At: at, Phrase: sm[1]}, true
	}
	return TimeMatch{}, false
}

func matchHourOfPeriod(text string, _ time.Time) (TimeMatch, bool) {
	for _, idx := range reHourOf.findAllIndex(text) {
		// "через 3 дня" is a day offset, not three in the afternoon.
		if strings.HasSuffix(strings.TrimSpace(text[:idx[2]]), "через") {
			continue
		}
		hour, _ := strconv.Atoi(text[idx[4]:idx[5]])
		h, ok := periodHour(hour, periodWords[text[idx[6]:idx[7]]], 12)
		if !ok {
			continue
		}
		return TimeMatch{At: domain.MustClockTime(h, 0), Phrase: text[idx[2]:idx[3]]}, true
	}
	return TimeMatch{}, false
}

func matchSimplePeriod(text string, _ time.Time) (TimeMatch, bool) {
	for _, sm := range reSimple.findAll(text) {
		hour, _ := strconv.Atoi(sm[2])
		h, ok := periodHour(hour, adverbialPeriodWords[sm[3]], 11)
		if !ok {
			continue
		}
		return TimeMatch{At: domain.MustClockTime(h, 0), Phrase: sm[1]}, true
	}
	return TimeMatch{}, false
}

// periodHour converts a 12-hour reading to the 24-hour clock. Morning takes
// 1-12 unchanged. The other periods add 12 to 1-11; at 12, evening and
// afternoon stay 12 and night wraps to 0. maxPM bounds the non-morning input.
func periodHour(hour int, p period, maxPM int) (int, bool) {
	if p == periodMorning {
		if hour < 1 || hour > 12 {
			return 0, false
		}
		return hour, true
	}
	if hour < 1 || hour > maxPM {
		return 0, false
	}
	if hour == 12 {
		if p == periodNight {
			return 0, true
		}
		return 12, true
	}
	return hour + 12, true
}

func matchRelativePeriod(text string, _ time.Time) (TimeMatch, bool) {
	toks := tokenize(text)
	for _, rp := range relativePeriods {
		words := phrase(rp.phrase)
		if indexPhrase(toks, words) >= 0 {
			return TimeMatch{At: rp.at, Phrase: strings.Join(words, " ")}, true
		}
	}
	return TimeMatch{}, false
}

func matchFutureRelative(text string, now time.Time) (TimeMatch, bool) {
	all := reInFuture.findAll(text)
	if len(all) == 0 {
		return TimeMatch{}, false
	}
	sm := all[0]
	n := 1
	if sm[2] != "" {
		n, _ = strconv.Atoi(sm[2])
	}
	var minutes int
	switch sm[3] {
	case "полчаса":
		minutes = 30
	case "минуту", "минуты", "минут", "мин":
		minutes = n
	default:
		minutes = n * 60
	}
	if minutes < 1 {
		return TimeMatch{}, false
	}
	at := domain.ClockOf(now.Add(time.Duration(minutes) * time.Minute))
	return TimeMatch{At: at, Phrase: sm[1], DelayMinutes: &minutes}, true
}

// IsMinuteOffset reports whether text asks for a reminder some minutes from
// now ("через 15 минут"). Such requests are always one-shot.
func IsMinuteOffset(text string) bool {
	return reInMinute.matches(strings.ToLower(text))
}
