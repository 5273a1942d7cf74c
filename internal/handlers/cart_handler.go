package handlers

import (
	"errors"
	"log"

	"github.com/code-catapult/devmart-pro-sub002/internal/models"
	"github.com/code-catapult/devmart-pro-sub002/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the shopping cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app. The user
// id travels in the path; session wiring is outside this subsystem.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart/:userId")
	cartRoutes.Get("/", h.HandleListItems)
	cartRoutes.Post("/items", h.HandleSetItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

// HandleListItems returns the cart contents for a user.
func (h *CartHandler) HandleListItems(c *fiber.Ctx) error {
	items, err := h.service.ListItems(c.Params("userId"))
	if err != nil {
		log.Printf("Error listing cart items: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(items)
}

// HandleSetItem adds a product to the cart or replaces its quantity.
func (h *CartHandler) HandleSetItem(c *fiber.Ctx) error {
	var body struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	item, err := h.service.SetItem(c.Params("userId"), body.ProductID, body.Quantity)
	if err != nil {
		log.Printf("Error setting cart item: %v", err)
		if errors.Is(err, models.ErrProductUnavailable) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Product is not available",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not add item to cart",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleRemoveItem deletes one product from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.service.RemoveItem(c.Params("userId"), c.Params("productId")); err != nil {
		log.Printf("Error removing cart item: %v", err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Could not remove item from cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"message": "Item removed from cart"})
}
