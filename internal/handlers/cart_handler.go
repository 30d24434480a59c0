package handlers

import (
	"pharmacy/internal/middleware"
	"pharmacy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service *services.CartService
}

func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes. All of them require authentication.
func (h *CartHandler) RegisterRoutes(router fiber.Router, g middleware.Guards) {
	cartRoutes := router.Group("/cart", g.Auth)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/add", h.HandleAddItem)
	cartRoutes.Put("/update", h.HandleUpdateItem)
	cartRoutes.Delete("/remove/:productId", h.HandleRemoveItem)
	cartRoutes.Delete("/clear", h.HandleClear)
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req services.CartItemRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	cart, err := h.service.AddItem(caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req services.CartItemRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	cart, err := h.service.UpdateItem(caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(caller(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleClear(c *fiber.Ctx) error {
	cart, err := h.service.Clear(caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}
