package remindparse

import "github.com/alexanderramin/tempo/internal/domain"

// framingPhrases are stripped from every payload. Longer phrases come first
// so "напомни мне" is removed as a unit.
var framingPhrases = [][]string{
	phrase("напомни мне пожалуйста"),
	phrase("напомни мне"),
	phrase("напомните мне"),
	phrase("напоминай мне"),
	phrase("напоминайте мне"),
	phrase("пожалуйста напомни"),
	phrase("напомни"),
	phrase("напомните"),
	phrase("напоминай"),
	phrase("напоминайте"),
	phrase("нужно напоминание"),
}

// coreFramingPhrases is the weaker set used when full extraction leaves
// nothing behind.
var coreFramingPhrases = [][]string{
	phrase("напомни мне"),
	phrase("напомни"),
	phrase("напоминай"),
}

// recurrenceKeywords signal a periodic request. Matched as whole words.
var recurrenceKeywords = map[string]bool{
	"каждый":      true,
	"каждую":      true,
	"каждое":      true,
	"каждые":      true,
	"каждого":     true,
	"каждом":      true,
	"ежедневно":   true,
	"еженедельно": true,
	"регулярно":   true,
	"постоянно":   true,
	"напоминай":   true,
	"напоминайте": true,
}

// weekdayStem maps a stem found anywhere inside a word to its tag.
type weekdayStem struct {
	stem string
	days []domain.Weekday
}

var weekdayStems = []weekdayStem{
	{"понедельник", []domain.Weekday{domain.Monday}},
	{"вторник", []domain.Weekday{domain.Tuesday}},
	{"четверг", []domain.Weekday{domain.Thursday}},
	{"пятниц", []domain.Weekday{domain.Friday}},
	{"суббот", []domain.Weekday{domain.Saturday}},
	{"воскресень", []domain.Weekday{domain.Sunday}},
	{"будн", []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday}},
	{"выходн", []domain.Weekday{domain.Saturday, domain.Sunday}},
}

// weekdayWords need whole-word matching: "сред" and the two-letter tags are
// prefixes or substrings of unrelated words ("средство", "всегда").
var weekdayWords = map[string]domain.Weekday{
	"среда":  domain.Wednesday,
	"среду":  domain.Wednesday,
	"среды":  domain.Wednesday,
	"среде":  domain.Wednesday,
	"средой": domain.Wednesday,
	"средам": domain.Wednesday,
	"средах": domain.Wednesday,
	"пн":     domain.Monday,
	"вт":     domain.Tuesday,
	"ср":     domain.Wednesday,
	"чт":     domain.Thursday,
	"пт":     domain.Friday,
	"сб":     domain.Saturday,
	"вс":     domain.Sunday,
	"пон":    domain.Monday,
	"втор":   domain.Tuesday,
	"чет":    domain.Thursday,
	"пят":    domain.Friday,
	"суб":    domain.Saturday,
	"вос":    domain.Sunday,
}

// weekdayPrepositions are dropped together with a following weekday word.
var weekdayPrepositions = map[string]bool{
	"по": true, "в": true, "во": true, "и": true,
}

// period identifies a part of the day in hour+period phrases.
type period int

const (
	periodMorning period = iota
	periodAfternoon
	periodEvening
	periodNight
)

// periodWords covers the genitive forms used after a number ("8 утра").
var periodWords = map[string]period{
	"утра":   periodMorning,
	"дня":    periodAfternoon,
	"вечера": periodEvening,
	"ночи":   periodNight,
}

// adverbialPeriodWords covers the casual "в 7 вечером" form. Afternoon has no
// such form.
var adverbialPeriodWords = map[string]period{
	"утром":   periodMorning,
	"вечером": periodEvening,
	"ночью":   periodNight,
}

// relativePeriod maps a standalone part-of-day phrase to a fixed clock time.
type relativePeriod struct {
	phrase string
	at     domain.ClockTime
}

var relativePeriods = []relativePeriod{
	{"с утра", domain.MustClockTime(8, 0)},
	{"утром", domain.MustClockTime(8, 0)},
	{"поутру", domain.MustClockTime(8, 0)},
	{"днем", domain.MustClockTime(13, 0)},
	{"в обед", domain.MustClockTime(13, 0)},
	{"в полдень", domain.MustClockTime(13, 0)},
	{"за обедом", domain.MustClockTime(13, 0)},
	{"вечером", domain.MustClockTime(20, 0)},
	{"под вечер", domain.MustClockTime(20, 0)},
	{"ночью", domain.MustClockTime(22, 0)},
	{"перед сном", domain.MustClockTime(22, 0)},
	{"после работы", domain.MustClockTime(18, 0)},
}
