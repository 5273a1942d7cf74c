package models

import "time"

// WebhookEvent is the durable idempotency record for an inbound payment
// provider event. The unique index on EventID guarantees that of two
// concurrent deliveries of the same event exactly one insert succeeds;
// the loser must treat the duplicate-key error as "already claimed".
type WebhookEvent struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	EventID         string    `json:"event_id" gorm:"uniqueIndex;type:varchar(191);not null"`
	EventType       string    `json:"event_type" gorm:"type:varchar(100);index"`
	Payload         string    `json:"payload" gorm:"type:text"`
	Processed       bool      `json:"processed" gorm:"default:false"`
	ProcessingError string    `json:"processing_error" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
