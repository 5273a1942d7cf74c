package repositories

import (
	"github.com/code-catapult/devmart-pro-sub002/internal/models"
)

// WebhookEventRepository is the durable dedupe ledger for inbound payment
// events, keyed by the provider's external event id.
type WebhookEventRepository interface {
	// Claim inserts a new unprocessed ledger row for the event. If a row
	// with the same event id already exists it reports alreadyClaimed
	// without mutating the existing row. The unique constraint on the
	// event id is what makes concurrent claims safe: exactly one insert
	// wins, every other caller sees alreadyClaimed.
	Claim(eventID, eventType, payload string) (alreadyClaimed bool, err error)
	MarkProcessed(eventID string) error
	MarkFailed(eventID, message string) error
	GetByEventID(eventID string) (*models.WebhookEvent, error)
}
