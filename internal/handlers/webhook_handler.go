package handlers

import (
	"errors"
	"log"

	"github.com/code-catapult/devmart-pro-sub002/internal/services"
	"github.com/code-catapult/devmart-pro-sub002/pkg/payment"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives payment provider webhook deliveries.
type WebhookHandler struct {
	service *services.PaymentEventService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(service *services.PaymentEventService) *WebhookHandler {
	return &WebhookHandler{
		service: service,
	}
}

// RegisterRoutes registers the webhook routes with the Fiber app.
func (h *WebhookHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/webhooks/payment", h.HandlePaymentWebhook)
}

// HandlePaymentWebhook processes one delivery. Response contract with the
// provider: 200 acknowledges (including detected duplicates), 400 is
// permanent and must not be retried, 500 asks for redelivery later.
func (h *WebhookHandler) HandlePaymentWebhook(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get(payment.SignatureHeader)

	err := h.service.Process(body, signature)
	if err == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}

	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		log.Printf("Rejected webhook delivery: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"received": false,
			"error":    "invalid signature",
		})
	case errors.Is(err, payment.ErrMalformedEvent):
		log.Printf("Rejected webhook delivery: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"received": false,
			"error":    err.Error(),
		})
	default:
		log.Printf("Webhook processing failed, provider should redeliver: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"received": false,
			"error":    "processing failed",
		})
	}
}
