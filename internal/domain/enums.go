package domain

// Kind determines a reminder's lifecycle and matching behavior.
type Kind string

const (
	KindOneShot   Kind = "one_shot"
	KindRecurring Kind = "recurring"
)

type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliverySkipped DeliveryStatus = "skipped"
)
