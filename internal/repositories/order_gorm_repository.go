package repositories

import (
	"errors"
	"fmt"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders with their items, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %s", models.ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByPaymentReference retrieves the order tied to an external payment
// reference.
func (r *GORMOrderRepository) GetByPaymentReference(ref string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "payment_reference = ?", ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment reference %s", models.ErrOrderNotFound, ref)
		}
		return nil, fmt.Errorf("failed to get order by payment reference %s: %w", ref, err)
	}
	return &order, nil
}

// TransitionStatus updates the order status only while it still equals
// from. Zero rows affected means either the order is gone or another
// writer changed the status between our read and this update.
func (r *GORMOrderRepository) TransitionStatus(id string, from, to models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("failed to transition order %s to %s: %w", id, to, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to transition order %s to %s: %w", id, to, err)
		}
		if count == 0 {
			return fmt.Errorf("%w: id %s", models.ErrOrderNotFound, id)
		}
		return fmt.Errorf("%w: order %s is no longer %s", models.ErrStatusConflict, id, from)
	}
	return nil
}
