package handlers

import (
	"pharmacy/internal/apperr"
	"pharmacy/internal/middleware"
	"pharmacy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// InventoryHandler exposes stock administration. Admin only.
type InventoryHandler struct {
	service *services.InventoryService
}

func NewInventoryHandler(service *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

func (h *InventoryHandler) RegisterRoutes(router fiber.Router, g middleware.Guards) {
	inventoryRoutes := router.Group("/inventory", g.Auth, g.Admin)
	inventoryRoutes.Put("/stock/:id", h.HandleSetStock)
	inventoryRoutes.Post("/restock/:id", h.HandleRestock)
	inventoryRoutes.Get("/low-stock", h.HandleLowStock)
	inventoryRoutes.Get("/expired", h.HandleExpired)
}

func (h *InventoryHandler) HandleSetStock(c *fiber.Ctx) error {
	var req struct {
		Stock *int `json:"stock"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Stock == nil {
		return respondError(c, apperr.Validation("stock is required"))
	}
	product, err := h.service.SetStock(c.Params("id"), *req.Stock)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *InventoryHandler) HandleRestock(c *fiber.Ctx) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	product, err := h.service.Restock(c.Params("id"), req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleLowStock lists products at or below ?threshold=, defaulting to the configured value.
func (h *InventoryHandler) HandleLowStock(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", 0)
	products, err := h.service.ListLowStock(threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) HandleExpired(c *fiber.Ctx) error {
	products, err := h.service.ListExpired()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}
