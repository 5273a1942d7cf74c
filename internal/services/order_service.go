package services

import (
	"fmt"
	"log"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"
	"github.com/code-catapult/devmart-pro-sub002/internal/repositories"
	"github.com/code-catapult/devmart-pro-sub002/internal/statemachine"
	"github.com/code-catapult/devmart-pro-sub002/pkg/rabbitmq"
)

// OrderService handles order reads and operator-driven status changes.
// Status changes go through the same state machine as the webhook path,
// so the two can never disagree on what is legal.
type OrderService struct {
	orderRepo repositories.OrderRepository
	mqClient  *rabbitmq.Client
}

// NewOrderService creates a new OrderService. mqClient may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, mqClient *rabbitmq.Client) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		mqClient:  mqClient,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// UpdateOrderStatus applies an operator-requested status change. Legal
// but risky transitions (cancelling a shipped order) are rejected with
// models.ErrConfirmationRequired until the caller confirms explicitly.
func (s *OrderService) UpdateOrderStatus(id string, status models.OrderStatus, confirmed bool) error {
	if !models.IsKnownOrderStatus(status) {
		return fmt.Errorf("%w: unknown status %q", models.ErrInvalidTransition, status)
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}

	if !statemachine.IsValidTransition(order.Status, status) {
		return fmt.Errorf("%w: %s", models.ErrInvalidTransition, statemachine.DescribeRejection(order.Status, status))
	}

	if statemachine.RequiresConfirmation(order.Status, status) && !confirmed {
		return fmt.Errorf("%w: order %s is already %s and the package may be in transit",
			models.ErrConfirmationRequired, id, order.Status)
	}

	if err := s.orderRepo.TransitionStatus(id, order.Status, status); err != nil {
		return err
	}

	if s.mqClient != nil {
		message := map[string]interface{}{
			"event":        "order.status_changed",
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"user_id":      order.UserID,
			"status":       status,
		}
		if err := s.mqClient.PublishJSON(rabbitmq.NotificationsQueue, message); err != nil {
			log.Printf("Warning: failed to publish status change for order %s: %v", order.ID, err)
		}
	}

	return nil
}
