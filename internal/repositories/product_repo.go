package repositories

import (
	"github.com/code-catapult/devmart-pro-sub002/internal/models"
)

// ProductRepository defines the interface for catalog reads. Stock is
// intentionally not mutable through this interface: the only stock write
// in the system is the inventory guard's conditional decrement inside the
// checkout transaction.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
}
