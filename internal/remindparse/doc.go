// Package remindparse turns free-form chat text into a structured reminder
// request.
//
// Parsing is a chain of ordered rule tables evaluated first-match-wins: time
// grammars (exact clock, hour with period of day, bare period keyword,
// relative offset), recurrence keywords, weekday names, and framing verbs to
// strip from the payload. Every function here is pure and never fails; when
// nothing matches, documented fallbacks apply (09:00, every day).
package remindparse
