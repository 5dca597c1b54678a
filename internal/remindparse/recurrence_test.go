package remindparse

import (
	"testing"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want domain.Kind
	}{
		{"напомни мне в 20:00 сделать зарядку", domain.KindOneShot},
		{"напоминай пить воду", domain.KindRecurring},
		{"каждый день в 8:00 пить витамины", domain.KindRecurring},
		{"ежедневно в 9 утра", domain.KindRecurring},
		{"напомни в среду купить хлеб", domain.KindRecurring},
		{"по выходным поливать цветы", domain.KindRecurring},
		{"напомни во вторник", domain.KindRecurring},
		// Keywords are whole words only.
		{"напомни про скидку для постоянного покупателя", domain.KindOneShot},
		{"напомни купить ежедневник", domain.KindOneShot},
		// Weekday words that need exact matches.
		{"напомни купить средство для посуды", domain.KindOneShot},
		{"напомни всегда закрывать окно", domain.KindOneShot},
		// A minute offset always forces one-shot.
		{"напоминай каждый день через 15 минут", domain.KindOneShot},
		{"через полчаса каждый понедельник", domain.KindOneShot},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.text))
		})
	}
}

func TestDetectWeekdays(t *testing.T) {
	tests := []struct {
		text string
		want domain.WeekdaySet
	}{
		{"по понедельникам и средам", domain.NewWeekdaySet(domain.Monday, domain.Wednesday)},
		{"в пятницу и субботу", domain.NewWeekdaySet(domain.Friday, domain.Saturday)},
		{"по будням", domain.NewWeekdaySet(domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday)},
		{"по выходным", domain.NewWeekdaySet(domain.Saturday, domain.Sunday)},
		{"пн, ср, пт", domain.NewWeekdaySet(domain.Monday, domain.Wednesday, domain.Friday)},
		{"пн,ср,пт", domain.NewWeekdaySet(domain.Monday, domain.Wednesday, domain.Friday)},
		{"вт;чт/сб", domain.NewWeekdaySet(domain.Tuesday, domain.Thursday, domain.Saturday)},
		{"в Воскресенье и в воскресенье", domain.NewWeekdaySet(domain.Sunday)},
		{"во вторник, в четверг", domain.NewWeekdaySet(domain.Tuesday, domain.Thursday)},
		{"каждый день", 0},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectWeekdays(tc.text))
		})
	}
}
