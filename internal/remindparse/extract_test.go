package remindparse

import (
	"testing"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtractPayload(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		kind   domain.Kind
		phrase string
		want   string
	}{
		{
			name:   "framing and time removed",
			text:   "напомни мне в 20:00 сделать зарядку",
			kind:   domain.KindOneShot,
			phrase: "в 20:00",
			want:   "сделать зарядку",
		},
		{
			name:   "casing preserved",
			text:   "Напомни мне в 20:00 Позвонить Маме",
			kind:   domain.KindOneShot,
			phrase: "в 20:00",
			want:   "Позвонить Маме",
		},
		{
			name:   "weekdays and prepositions dropped",
			text:   "напоминай по понедельникам и средам в 9:00 выносить мусор",
			kind:   domain.KindRecurring,
			phrase: "в 9:00",
			want:   "выносить мусор",
		},
		{
			name:   "stray recurrence keyword dropped for one-shot",
			text:   "напомни регулярно через 15 минут проверить почту",
			kind:   domain.KindOneShot,
			phrase: "через 15 минут",
			want:   "проверить почту",
		},
		{
			name:   "time phrase removed once",
			text:   "напомни в 7 утра про встречу в 7 утра",
			kind:   domain.KindOneShot,
			phrase: "в 7 утра",
			want:   "про встречу в 7 утра",
		},
		{
			name:   "comma-joined weekdays dropped",
			text:   "напоминай пн,ср,пт в 8:00 зарядка",
			kind:   domain.KindRecurring,
			phrase: "в 8:00",
			want:   "зарядка",
		},
		{
			name:   "glued punctuation kept as typed",
			text:   "напомни в 9:00 открыть https://example.com/a,b и купить хлеб,молоко",
			kind:   domain.KindOneShot,
			phrase: "в 9:00",
			want:   "открыть https://example.com/a,b и купить хлеб,молоко",
		},
		{
			name: "trailing punctuation trimmed",
			text: "напомни: купить хлеб.",
			kind: domain.KindOneShot,
			want: "купить хлеб",
		},
		{
			name:   "ё folded when matching",
			text:   "напомни днём полить цветы",
			kind:   domain.KindOneShot,
			phrase: "днем",
			want:   "полить цветы",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, fallback := ExtractPayload(tc.text, tc.kind, tc.phrase)
			assert.Equal(t, tc.want, got)
			assert.False(t, fallback)
		})
	}
}

func TestExtractPayload_Fallback(t *testing.T) {
	got, fallback := ExtractPayload("напомни ежедневно", domain.KindOneShot, "")
	assert.True(t, fallback)
	assert.Equal(t, "ежедневно", got)

	got, fallback = ExtractPayload("напомни мне", domain.KindOneShot, "")
	assert.True(t, fallback)
	assert.Empty(t, got)
}
