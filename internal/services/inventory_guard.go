package services

import (
	"errors"
	"fmt"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"

	"gorm.io/gorm"
)

// ReservationLine is one (product, quantity) pair to reserve.
type ReservationLine struct {
	ProductID string
	Quantity  int
}

// InventoryGuard performs the atomic check-and-decrement of product
// stock. It only ever runs inside the checkout transaction, so a failed
// line aborts the whole transaction and no partial decrement survives.
type InventoryGuard struct{}

// NewInventoryGuard creates a new InventoryGuard.
func NewInventoryGuard() *InventoryGuard {
	return &InventoryGuard{}
}

// Reserve decrements stock for every line with a single conditional
// update per product: the decrement only happens while stock >= quantity,
// so stock can never go negative no matter how many checkouts race. Zero
// rows affected means the stock check failed; the returned error carries
// the exact remaining stock so the purchaser sees an actionable message.
func (g *InventoryGuard) Reserve(tx *gorm.DB, lines []ReservationLine) error {
	for _, line := range lines {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
			Update("stock", gorm.Expr("stock - ?", line.Quantity))
		if res.Error != nil {
			return fmt.Errorf("failed to reserve stock for product %s: %w", line.ProductID, res.Error)
		}
		if res.RowsAffected == 0 {
			var product models.Product
			if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %s", models.ErrProductUnavailable, line.ProductID)
				}
				return fmt.Errorf("failed to re-read stock for product %s: %w", line.ProductID, err)
			}
			return fmt.Errorf("%w: product %s has %d unit(s) left, requested %d",
				models.ErrInsufficientInventory, line.ProductID, product.Stock, line.Quantity)
		}
	}
	return nil
}
