package remindparse

import (
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// DefaultFireTime is used when no time grammar matches.
var DefaultFireTime = domain.MustClockTime(9, 0)

// Result is a parsed request plus diagnostics describing which fallbacks
// were taken.
type Result struct {
	Request domain.ReminderRequest
	TimeTag TimeTag
	// DaysDefaulted is set when a recurring request named no weekday and
	// was materialized as every day.
	DaysDefaulted bool
	// PayloadFallback is set when full extraction left nothing and only the
	// core framing verbs were stripped.
	PayloadFallback bool
}

// Parser composes the time grammars, the recurrence classifier and the
// payload extractor.
type Parser struct {
	defaultTime domain.ClockTime
}

// Option configures a Parser.
type Option func(*Parser)

// WithDefaultTime overrides the 09:00 fallback.
func WithDefaultTime(at domain.ClockTime) Option {
	return func(p *Parser) { p.defaultTime = at }
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{defaultTime: DefaultFireTime}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts text into a reminder request relative to now. It never
// fails: an unparsed time becomes the default fire time and a recurring
// request without weekdays becomes every day. OwnerID is left for the caller.
func (p *Parser) Parse(text string, now time.Time) Result {
	lower := strings.ToLower(text)

	kind := Classify(lower)

	m, ok := ParseTime(stripFraming(lower), now)
	if !ok {
		m, ok = ParseTime(lower, now)
	}
	if !ok {
		m = TimeMatch{At: p.defaultTime, Tag: TagDefault}
	}

	res := Result{TimeTag: m.Tag}
	var schedule domain.Schedule
	switch {
	case m.DelayMinutes != nil:
		// A relative offset pins the reminder to one moment.
		kind = domain.KindOneShot
		schedule = domain.OneShot{DelayMinutes: m.DelayMinutes}
	case kind == domain.KindRecurring:
		days := DetectWeekdays(lower)
		if days.IsEmpty() {
			days = domain.EveryDay
			res.DaysDefaulted = true
		}
		schedule = domain.Recurring{Days: days}
	default:
		schedule = domain.OneShot{}
	}

	payload, fallback := ExtractPayload(text, kind, m.Phrase)
	res.PayloadFallback = fallback
	res.Request = domain.ReminderRequest{
		FireTime: m.At,
		Schedule: schedule,
		Payload:  payload,
		Source:   text,
	}
	return res
}

// stripFraming removes framing verbs so time grammars see only the content.
func stripFraming(text string) string {
	toks := tokenize(text)
	for _, p := range framingPhrases {
		toks = removePhrase(toks, p, -1)
	}
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.raw
	}
	return strings.Join(parts, " ")
}

// StartsWithFraming reports whether text opens with a reminder verb such as
// "напомни" or "напоминай". Chat front ends use it to route free text.
func StartsWithFraming(text string) bool {
	toks := tokenize(text)
	for _, p := range framingPhrases {
		if len(toks) >= len(p) && indexPhrase(toks[:len(p)], p) == 0 {
			return true
		}
	}
	return false
}
