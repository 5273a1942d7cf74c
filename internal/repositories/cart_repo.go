package repositories

import (
	"github.com/code-catapult/devmart-pro-sub002/internal/models"
)

// CartRepository defines the interface for cart data access used by the
// cart HTTP endpoints. The checkout transaction does not go through this
// interface: it re-reads and clears the cart rows inside its own
// transaction so the rows it converts are the rows it deletes.
type CartRepository interface {
	ListItems(userID string) ([]models.CartItem, error)
	Upsert(item *models.CartItem) error
	Remove(userID, productID string) error
	Clear(userID string) error
}
