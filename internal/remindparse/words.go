package remindparse

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// token is one word. raw keeps the user's spelling including a trailing
// separator, word is the lower-cased form with surrounding punctuation
// trimmed. pos is the index in the original sequence; glued marks a token
// split off the previous one without whitespace between them.
type token struct {
	raw   string
	word  string
	pos   int
	glued bool
}

// tokenize splits on whitespace and after list separators, so "пн,ср,пт"
// yields three tokens.
func tokenize(s string) []token {
	fields := strings.Fields(s)
	toks := make([]token, 0, len(fields))
	add := func(raw string, glued bool) {
		toks = append(toks, token{raw: raw, word: normalizeWord(raw), pos: len(toks), glued: glued})
	}
	for _, f := range fields {
		start := 0
		for i, r := range f {
			if !isListSeparator(r) {
				continue
			}
			add(f[start:i+1], start > 0)
			start = i + 1
		}
		if start < len(f) {
			add(f[start:], start > 0)
		}
	}
	return toks
}

func isListSeparator(r rune) bool {
	return r == ',' || r == ';' || r == '/'
}

func normalizeWord(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ReplaceAll(strings.ToLower(s), "ё", "е")
}

func phrase(p string) []string {
	fields := strings.Fields(p)
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = normalizeWord(f)
	}
	return out
}

// indexPhrase returns the first token index at which words occur
// consecutively, or -1.
func indexPhrase(toks []token, words []string) int {
	if len(words) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(words) <= len(toks); i++ {
		for j, w := range words {
			if toks[i+j].word != w {
				continue outer
			}
		}
		return i
	}
	return -1
}

// removePhrase drops occurrences of words, at most limit of them
// (limit < 0 means all).
func removePhrase(toks []token, words []string, limit int) []token {
	for n := 0; limit < 0 || n < limit; n++ {
		i := indexPhrase(toks, words)
		if i < 0 {
			break
		}
		toks = append(toks[:i:i], toks[i+len(words):]...)
	}
	return toks
}

// joinTokens rebuilds text from toks. Tokens that were glued in the input
// stay glued while their neighbour survives; bare punctuation is dropped.
func joinTokens(toks []token) string {
	var b strings.Builder
	prev := -2
	for _, t := range toks {
		adjacent := t.glued && t.pos == prev+1
		if t.word == "" && !adjacent {
			continue
		}
		if b.Len() > 0 && !adjacent {
			b.WriteByte(' ')
		}
		b.WriteString(t.raw)
		prev = t.pos
	}
	return strings.Trim(b.String(), " ,.;:-—")
}

// wordRegexp matches a fragment only where it stands as whole words. Go's
// \b only understands ASCII word characters and RE2 has no lookaround, so
// the neighbouring runes are checked by hand. That leaves the separator
// after one match free to lead the next. The fragment is captured as group 1.
type wordRegexp struct {
	re *regexp.Regexp
}

func mustWordRegexp(fragment string) *wordRegexp {
	return &wordRegexp{re: regexp.MustCompile(`(` + fragment + `)`)}
}

// findAllIndex returns the submatch indexes of every bounded match, in
// order, as regexp.FindAllStringSubmatchIndex would.
func (w *wordRegexp) findAllIndex(text string) [][]int {
	var out [][]int
	for pos := 0; pos < len(text); {
		loc := w.re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		start, end := loc[0], loc[1]
		if isWordBoundary(text, start, end) {
			out = append(out, loc)
			pos = max(end, start+1)
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + max(size, 1)
	}
	return out
}

// findAll is findAllIndex with the submatches as strings; an unmatched
// optional group is "".
func (w *wordRegexp) findAll(text string) [][]string {
	locs := w.findAllIndex(text)
	out := make([][]string, 0, len(locs))
	for _, loc := range locs {
		sm := make([]string, len(loc)/2)
		for i := range sm {
			if loc[2*i] >= 0 {
				sm[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		out = append(out, sm)
	}
	return out
}

func (w *wordRegexp) matches(text string) bool {
	return len(w.findAllIndex(text)) > 0
}

func isWordBoundary(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
