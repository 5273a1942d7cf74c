package repositories

import (
	"github.com/code-catapult/devmart-pro-sub002/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// created by the checkout transaction, not through this interface, and
// are never deleted; the only mutation is a guarded status transition.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByPaymentReference(ref string) (*models.Order, error)
	// TransitionStatus applies from -> to as a conditional update that
	// only succeeds while the persisted status is still from. It returns
	// models.ErrStatusConflict when a concurrent writer got there first.
	TransitionStatus(id string, from, to models.OrderStatus) error
}
