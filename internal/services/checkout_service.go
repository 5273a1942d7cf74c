package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"
	"github.com/code-catapult/devmart-pro-sub002/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutInput is everything the purchaser supplies to convert their
// cart into an order.
type CheckoutInput struct {
	UserID           string                 `json:"user_id" validate:"required"`
	PaymentReference string                 `json:"payment_reference" validate:"required"`
	ShippingAddress  models.ShippingAddress `json:"shipping_address"`
}

// CheckoutService converts a user's cart into a persisted order. All
// reads and writes happen inside one database transaction: the cart is
// re-read, product price and stock are re-read (never trusted from an
// earlier snapshot), stock is decremented through the inventory guard,
// the order and its items are created, and the cart rows are deleted.
// Any failure rolls the whole thing back.
type CheckoutService struct {
	db       *gorm.DB
	guard    *InventoryGuard
	mqClient *rabbitmq.Client
	validate *validator.Validate

	taxRateBasisPoints int64
	shippingFeeCents   int64
}

// NewCheckoutService creates a new CheckoutService. mqClient may be nil;
// event publishing is best-effort and never fails a checkout.
func NewCheckoutService(db *gorm.DB, guard *InventoryGuard, mqClient *rabbitmq.Client, taxRateBasisPoints, shippingFeeCents int64) *CheckoutService {
	return &CheckoutService{
		db:                 db,
		guard:              guard,
		mqClient:           mqClient,
		validate:           validator.New(),
		taxRateBasisPoints: taxRateBasisPoints,
		shippingFeeCents:   shippingFeeCents,
	}
}

// Checkout runs the checkout transaction and returns the created order
// aggregate. Typed failures: models.ErrEmptyCart,
// models.ErrProductUnavailable, models.ErrInsufficientInventory. The
// caller decides whether and when to retry; this service never retries
// internally.
func (s *CheckoutService) Checkout(input CheckoutInput) (*models.Order, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid checkout input: %w", err)
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Re-read the cart inside the transaction. A pre-transaction
		// emptiness check would race with concurrent cart mutations.
		var cartItems []models.CartItem
		if err := tx.Where("user_id = ?", input.UserID).Order("created_at").Find(&cartItems).Error; err != nil {
			return fmt.Errorf("failed to read cart for user %s: %w", input.UserID, err)
		}
		if len(cartItems) == 0 {
			return fmt.Errorf("%w: user %s", models.ErrEmptyCart, input.UserID)
		}

		// Re-read current product state. Client-side prices are ignored:
		// the snapshot taken here is what the customer pays.
		productIDs := make([]string, 0, len(cartItems))
		for _, item := range cartItems {
			productIDs = append(productIDs, item.ProductID)
		}
		var products []models.Product
		if err := tx.Where("id IN ?", productIDs).Find(&products).Error; err != nil {
			return fmt.Errorf("failed to read products: %w", err)
		}
		productsByID := make(map[string]models.Product, len(products))
		for _, p := range products {
			productsByID[p.ID] = p
		}

		lines := make([]ReservationLine, 0, len(cartItems))
		for _, item := range cartItems {
			product, ok := productsByID[item.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %s no longer exists", models.ErrProductUnavailable, item.ProductID)
			}
			if !product.Active {
				return fmt.Errorf("%w: product %s (%s) is not purchasable", models.ErrProductUnavailable, product.ID, product.Name)
			}
			lines = append(lines, ReservationLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		// Atomic check-and-decrement for every line. A shortfall on any
		// line aborts the transaction; no partial decrement survives.
		if err := s.guard.Reserve(tx, lines); err != nil {
			return err
		}

		var subtotal int64
		orderItems := make([]models.OrderItem, 0, len(cartItems))
		for _, item := range cartItems {
			product := productsByID[item.ProductID]
			orderItems = append(orderItems, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
			subtotal += product.Price * int64(item.Quantity)
		}
		tax := subtotal * s.taxRateBasisPoints / 10000

		order = &models.Order{
			ID:               uuid.New().String(),
			OrderNumber:      generateOrderNumber(),
			UserID:           input.UserID,
			Status:           models.OrderStatusPending,
			Subtotal:         subtotal,
			Tax:              tax,
			Shipping:         s.shippingFeeCents,
			Total:            subtotal + tax + s.shippingFeeCents,
			PaymentReference: input.PaymentReference,
			ShippingAddress:  input.ShippingAddress,
			Items:            orderItems,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if err := tx.Where("user_id = ?", input.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart for user %s: %w", input.UserID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Publish after commit, fire-and-forget. The confirmation consumer
	// picks this up and sends the email; a broker outage never fails a
	// committed checkout.
	s.publishOrderCreated(order)

	return order, nil
}

func (s *CheckoutService) publishOrderCreated(order *models.Order) {
	if s.mqClient == nil {
		return
	}
	message := map[string]interface{}{
		"event":        "order.created",
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"status":       order.Status,
		"total":        order.Total,
	}
	if err := s.mqClient.PublishJSON(rabbitmq.NotificationsQueue, message); err != nil {
		log.Printf("Warning: failed to publish order created event for order %s: %v", order.ID, err)
	}
}

// generateOrderNumber builds a human-readable unique order number like
// ORD-20260831-1A2B3C.
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
