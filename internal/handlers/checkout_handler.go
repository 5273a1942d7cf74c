package handlers

import (
	"errors"
	"log"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"
	"github.com/code-catapult/devmart-pro-sub002/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles the checkout HTTP endpoint.
type CheckoutHandler struct {
	service *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
}

// HandleCheckout converts the caller's cart into an order. Business-rule
// failures come back as typed errors with actionable messages; they are
// never downgraded to a generic "try again".
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var input services.CheckoutInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, err := h.service.Checkout(input)
	if err == nil {
		return c.Status(fiber.StatusCreated).JSON(order)
	}

	log.Printf("Checkout failed for user %s: %v", input.UserID, err)

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Checkout input is invalid",
			"error":   err.Error(),
		})
	case errors.Is(err, models.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Your cart is empty",
			"error":   err.Error(),
		})
	case errors.Is(err, models.ErrInsufficientInventory):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Not enough stock to complete the order",
			"error":   err.Error(),
		})
	case errors.Is(err, models.ErrProductUnavailable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "A product in your cart is no longer available",
			"error":   err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not complete checkout",
			"error":   err.Error(),
		})
	}
}
