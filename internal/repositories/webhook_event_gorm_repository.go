package repositories

import (
	"errors"
	"fmt"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"

	"gorm.io/gorm"
)

// GORMWebhookEventRepository is a GORM implementation of
// WebhookEventRepository. It relies on the database translating
// unique-key violations (gorm.Config{TranslateError: true}).
type GORMWebhookEventRepository struct {
	db *gorm.DB
}

// NewGORMWebhookEventRepository creates a new instance of
// GORMWebhookEventRepository.
func NewGORMWebhookEventRepository(db *gorm.DB) *GORMWebhookEventRepository {
	return &GORMWebhookEventRepository{
		db: db,
	}
}

// Claim attempts a plain insert. A duplicate-key error means another
// delivery of the same event already claimed it; that is reported as
// alreadyClaimed, never retried as new work.
func (r *GORMWebhookEventRepository) Claim(eventID, eventType, payload string) (bool, error) {
	event := models.WebhookEvent{
		EventID:   eventID,
		EventType: eventType,
		Payload:   payload,
		Processed: false,
	}
	if err := r.db.Create(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return true, nil
		}
		return false, fmt.Errorf("failed to claim webhook event %s: %w", eventID, err)
	}
	return false, nil
}

// MarkProcessed records successful processing and clears any error text
// from a previous failed attempt.
func (r *GORMWebhookEventRepository) MarkProcessed(eventID string) error {
	res := r.db.Model(&models.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{"processed": true, "processing_error": ""})
	if res.Error != nil {
		return fmt.Errorf("failed to mark webhook event %s processed: %w", eventID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("webhook event %s not found", eventID)
	}
	return nil
}

// MarkFailed leaves the row unprocessed with the failure message, so the
// next redelivery can be correlated with what went wrong.
func (r *GORMWebhookEventRepository) MarkFailed(eventID, message string) error {
	res := r.db.Model(&models.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{"processed": false, "processing_error": message})
	if res.Error != nil {
		return fmt.Errorf("failed to mark webhook event %s failed: %w", eventID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("webhook event %s not found", eventID)
	}
	return nil
}

// GetByEventID returns the ledger row for an external event id.
func (r *GORMWebhookEventRepository) GetByEventID(eventID string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := r.db.First(&event, "event_id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("webhook event %s not found", eventID)
		}
		return nil, fmt.Errorf("failed to get webhook event %s: %w", eventID, err)
	}
	return &event, nil
}
