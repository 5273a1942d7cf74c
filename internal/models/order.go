package models

import "time"

// OrderStatus is the lifecycle status of an order. Transitions between
// statuses are governed by the statemachine package; nothing else is
// allowed to decide what a legal status change is.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every known status, useful for input validation.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsKnownOrderStatus reports whether s is one of the defined statuses.
func IsKnownOrderStatus(s OrderStatus) bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ShippingAddress is snapshotted onto the order at checkout time and is
// immutable afterwards.
type ShippingAddress struct {
	Name       string `json:"name" validate:"required,max=200"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,len=2"`
}

// Order represents a customer order. All monetary amounts are integer
// minor currency units (cents); Total = Subtotal + Tax + Shipping.
// Orders are created at checkout commit and are never hard-deleted.
type Order struct {
	ID               string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber      string          `json:"order_number" gorm:"uniqueIndex;type:varchar(32)"`
	UserID           string          `json:"user_id" gorm:"index;type:varchar(36)"`
	Status           OrderStatus     `json:"status" gorm:"type:varchar(20);index"`
	Subtotal         int64           `json:"subtotal"`
	Tax              int64           `json:"tax"`
	Shipping         int64           `json:"shipping"`
	Total            int64           `json:"total"`
	PaymentReference string          `json:"payment_reference" gorm:"index;type:varchar(191)"`
	ShippingAddress  ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:ship_"`
	Items            []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// OrderItem is a single line of an order. UnitPrice is the product price
// at purchase time and must never reflect later catalog price changes.
type OrderItem struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   string `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string `json:"product_id" gorm:"type:varchar(36)"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}
