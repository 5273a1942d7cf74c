package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"
	"github.com/code-catapult/devmart-pro-sub002/internal/repositories"
	"github.com/code-catapult/devmart-pro-sub002/internal/statemachine"
	"github.com/code-catapult/devmart-pro-sub002/pkg/payment"
	"github.com/code-catapult/devmart-pro-sub002/pkg/rabbitmq"
)

// ErrTransientProcessing marks infrastructure failures during webhook
// dispatch. The handler answers 500 so the provider's redelivery
// mechanism retries later; there is no internal retry loop.
var ErrTransientProcessing = errors.New("transient webhook processing failure")

// PaymentEventService ingests asynchronous payment provider
// notifications: verify the signature, claim the event in the dedupe
// ledger, dispatch it to a state transition, and record the outcome. A
// given external event id results in at most one applied transition no
// matter how many times the provider delivers it.
type PaymentEventService struct {
	orderRepo repositories.OrderRepository
	ledger    repositories.WebhookEventRepository
	provider  *payment.Client
	mqClient  *rabbitmq.Client
}

// NewPaymentEventService creates a new PaymentEventService. mqClient may
// be nil; notification publishing is best-effort.
func NewPaymentEventService(orderRepo repositories.OrderRepository, ledger repositories.WebhookEventRepository, provider *payment.Client, mqClient *rabbitmq.Client) *PaymentEventService {
	return &PaymentEventService{
		orderRepo: orderRepo,
		ledger:    ledger,
		provider:  provider,
		mqClient:  mqClient,
	}
}

// Process handles one webhook delivery. Error classification for the
// handler: payment.ErrInvalidSignature and payment.ErrMalformedEvent are
// permanent (400, provider must not retry); ErrTransientProcessing is
// retryable (500, provider redelivers); nil means acknowledged (200),
// including detected duplicates.
func (s *PaymentEventService) Process(body []byte, signature string) error {
	// Security boundary first: nothing is written to the ledger before
	// the signature checks out.
	if err := s.provider.VerifySignature(body, signature); err != nil {
		return err
	}

	event, err := payment.ParseEvent(body)
	if err != nil {
		return err
	}

	alreadyClaimed, err := s.ledger.Claim(event.ID, event.Type, string(body))
	if err != nil {
		return fmt.Errorf("%w: claiming event %s: %v", ErrTransientProcessing, event.ID, err)
	}
	if alreadyClaimed {
		existing, err := s.ledger.GetByEventID(event.ID)
		if err != nil {
			return fmt.Errorf("%w: reading ledger for event %s: %v", ErrTransientProcessing, event.ID, err)
		}
		if existing.Processed {
			// Effectively-once from the order's perspective: acknowledge
			// the duplicate without re-running any side effect.
			log.Printf("Webhook event %s already processed, acknowledging duplicate", event.ID)
			return nil
		}
		// The earlier delivery failed mid-dispatch; this redelivery is the
		// retry. The conditional status update below keeps the side effect
		// single-application even if the earlier attempt half-succeeded.
		log.Printf("Webhook event %s previously failed, reprocessing on redelivery", event.ID)
	}

	if err := s.dispatch(event); err != nil {
		if markErr := s.ledger.MarkFailed(event.ID, err.Error()); markErr != nil {
			log.Printf("Error marking webhook event %s failed: %v", event.ID, markErr)
		}
		return fmt.Errorf("%w: dispatching event %s: %v", ErrTransientProcessing, event.ID, err)
	}

	if err := s.ledger.MarkProcessed(event.ID); err != nil {
		return fmt.Errorf("%w: finalizing event %s: %v", ErrTransientProcessing, event.ID, err)
	}
	return nil
}

// dispatch routes an event to its order side effect. Unrecognized types
// and events whose transition is no longer legal are logged and
// acknowledged, not failed: forcing the change would corrupt state and
// failing would make the provider redeliver forever.
func (s *PaymentEventService) dispatch(event *payment.Event) error {
	switch event.Type {
	case payment.EventPaymentSucceeded:
		return s.applyTransition(event, models.OrderStatusProcessing)
	case payment.EventPaymentFailed, payment.EventPaymentRefunded:
		return s.applyTransition(event, models.OrderStatusCancelled)
	case payment.EventDisputeOpened:
		// Dispute handling is deliberately deferred; record the sighting
		// and leave the order untouched.
		log.Printf("Dispute opened for payment reference %s (event %s); no state change", event.PaymentReference, event.ID)
		return nil
	default:
		log.Printf("Ignoring unrecognized webhook event type %q (event %s)", event.Type, event.ID)
		return nil
	}
}

// applyTransition moves the order found by the event's payment reference
// to the target status, if the state machine allows it given the
// *current* persisted status. Out-of-order or stale events that are no
// longer legal are logged and dropped rather than forced.
func (s *PaymentEventService) applyTransition(event *payment.Event, target models.OrderStatus) error {
	order, err := s.orderRepo.GetByPaymentReference(event.PaymentReference)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			log.Printf("No order for payment reference %q (event %s); nothing to do", event.PaymentReference, event.ID)
			return nil
		}
		return err
	}

	if !statemachine.IsValidTransition(order.Status, target) {
		log.Printf("Webhook event %s wants order %s %s -> %s; %s",
			event.ID, order.ID, order.Status, target, statemachine.DescribeRejection(order.Status, target))
		return nil
	}

	if err := s.orderRepo.TransitionStatus(order.ID, order.Status, target); err != nil {
		// A status conflict means a concurrent writer moved the order
		// between our read and the update. Surface it as a failure so the
		// redelivery re-evaluates against the new status.
		return err
	}

	log.Printf("Order %s moved %s -> %s by webhook event %s", order.ID, order.Status, target, event.ID)
	s.publishStatusChanged(order, target)
	return nil
}

func (s *PaymentEventService) publishStatusChanged(order *models.Order, status models.OrderStatus) {
	if s.mqClient == nil {
		return
	}
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
