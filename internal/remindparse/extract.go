package remindparse

import "github.com/alexanderramin/tempo/internal/domain"

// ExtractPayload isolates the action to remind about. It removes framing
// verbs, the matched time fragment, and, depending on kind, either stray
// recurrence keywords (one-shot) or weekday mentions (recurring). The user's
// spelling of the remaining words is preserved.
//
// When nothing is left, the payload is re-derived from text with only the
// core framing verbs removed and fallback is true. The result may still be
// empty for input such as "напомни".
func ExtractPayload(text string, kind domain.Kind, timePhrase string) (payload string, fallback bool) {
	toks := tokenize(text)
	for _, p := range framingPhrases {
		toks = removePhrase(toks, p, -1)
	}
	if timePhrase != "" {
		toks = removePhrase(toks, phrase(timePhrase), 1)
	}
	if kind == domain.KindRecurring {
		toks = dropWeekdays(toks)
	} else {
		toks = dropRecurrenceKeywords(toks)
	}
	if payload = joinTokens(toks); payload != "" {
		return payload, false
	}
	return corePayload(text), true
}

func corePayload(text string) string {
	toks := tokenize(text)
	for _, p := range coreFramingPhrases {
		toks = removePhrase(toks, p, -1)
	}
	return joinTokens(toks)
}

func dropRecurrenceKeywords(toks []token) []token {
	out := toks[:0:0]
	for _, t := range toks {
		if !recurrenceKeywords[t.word] {
			out = append(out, t)
		}
	}
	return out
}

// dropWeekdays removes weekday words along with the prepositions and
// conjunctions that lead into them ("по понедельникам и средам").
func dropWeekdays(toks []token) []token {
	out := toks[:0:0]
	for _, t := range toks {
		if len(weekdaysIn(t.word)) == 0 {
			out = append(out, t)
			continue
		}
		for len(out) > 0 && (weekdayPrepositions[out[len(out)-1].word] || out[len(out)-1].word == "") {
			out = out[:len(out)-1]
		}
	}
	return out
}
