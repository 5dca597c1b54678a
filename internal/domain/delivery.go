package domain

import "time"

// Delivery records one dispatcher attempt to deliver a reminder.
type Delivery struct {
	ID          string
	ReminderID  int64
	OwnerID     string
	Slot        string
	Status      DeliveryStatus
	Error       string
	AttemptedAt time.Time
}
