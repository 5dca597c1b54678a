package chat

import (
	"fmt"

	"github.com/alexanderramin/tempo/internal/domain"
)

const (
	msgHelp = `Я напоминаю о делах.

Просто напишите, например:
  напомни мне в 20:00 сделать зарядку
  напоминай каждый день в 8:00 пить витамины
  напомни через 15 минут позвонить

Команды:
  /remind ЧЧ:ММ текст — разовое напоминание
  /every ЧЧ:ММ дни текст — повторяющееся (дни: пн,ср,пт или ежедневно)
  /reminders — активные напоминания
  /delete номер — удалить напоминание`

	usageRemind = "Пример: /remind 20:00 сделать зарядку"
	usageEvery  = "Пример: /every 08:00 пн,ср,пт пить витамины"
	usageDelete = "Пример: /delete 3"

	msgUnknown          = "Не понял. Начните сообщение со слова «напомни» или посмотрите /help."
	msgSlowDown         = "Слишком много сообщений. Подождите минуту."
	msgLimit            = "У вас максимум активных напоминаний. Удалите ненужные командой /delete."
	msgStoreUnavailable = "Не получилось сохранить, попробуйте позже."
	msgNoReminders      = "Активных напоминаний нет."
	msgListHeader       = "Ваши напоминания:"
	msgNotFound         = "Напоминание #%d не найдено."
	msgNotFoundGeneric  = "Напоминание не найдено."
	msgDeleted          = "Напоминание #%d удалено."
	msgTimeDefaulted    = "Время не распознано, поставил на %s."
	msgEmptyPayload     = "Не понял, о чём напомнить."
)

func formatCreated(r *domain.Reminder) string {
	return fmt.Sprintf("✅ Напоминание #%d: %s в %s: %s", r.ID, describeSchedule(r), r.FireTime, r.Payload)
}

func describeSchedule(r *domain.Reminder) string {
	days := r.Days()
	switch {
	case r.Kind() == domain.KindOneShot:
		if delay, ok := r.DelayMinutes(); ok {
			return fmt.Sprintf("через %d мин", delay)
		}
		return "разово"
	case days.IsEveryDay():
		return "каждый день"
	default:
		return "по " + days.String()
	}
}
