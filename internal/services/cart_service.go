package services

import (
	"fmt"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"
	"github.com/code-catapult/devmart-pro-sub002/internal/repositories"
)

// CartService handles the cart endpoints that feed checkout. It only
// validates against the catalog at add time; checkout re-validates
// everything inside its transaction.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// ListItems returns the user's cart rows.
func (s *CartService) ListItems(userID string) ([]models.CartItem, error) {
	return s.cartRepo.ListItems(userID)
}

// SetItem adds a product to the cart or replaces its quantity.
func (s *CartService) SetItem(userID, productID string, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("%w: product %s (%s) is not purchasable", models.ErrProductUnavailable, product.ID, product.Name)
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes one product from the cart.
func (s *CartService) RemoveItem(userID, productID string) error {
	return s.cartRepo.Remove(userID, productID)
}

// Clear empties the user's cart.
func (s *CartService) Clear(userID string) error {
	return s.cartRepo.Clear(userID)
}
