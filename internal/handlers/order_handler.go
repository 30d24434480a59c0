package handlers

import (
	"pharmacy/internal/middleware"
	"pharmacy/internal/models"
	"pharmacy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes. Static paths come before /:id.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, g middleware.Guards) {
	orderRoutes := router.Group("/orders", g.Auth)
	orderRoutes.Post("/create", h.HandleCreateOrder)
	orderRoutes.Post("/checkout", h.HandleCheckout)
	orderRoutes.Get("/user", h.HandleGetUserOrders)
	orderRoutes.Get("/admin/all", g.Admin, h.HandleGetAllOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id", h.HandleUpdateOrder)
	orderRoutes.Put("/:id/status", g.Admin, h.HandleUpdateOrderStatus)
	orderRoutes.Put("/:id/payment", g.Admin, h.HandleUpdatePaymentStatus)
	orderRoutes.Put("/:id/cancel", h.HandleCancelOrder)
}

// HandleCreateOrder places an order from explicit items.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	order, err := h.service.CreateOrder(caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleCheckout places an order from the caller's cart.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	order, err := h.service.Checkout(caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) HandleGetUserOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListUserOrders(caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetAllOrders lists every order, optionally filtered by ?status=.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAllOrders(caller(c), models.OrderStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(caller(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	var patch services.OrderPatch
	if err := parseBody(c, &patch); err != nil {
		return respondError(c, err)
	}
	order, err := h.service.UpdateOrder(caller(c), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req services.StatusUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	order, err := h.service.UpdateOrderStatus(caller(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleUpdatePaymentStatus(c *fiber.Ctx) error {
	var req struct {
		PaymentStatus models.PaymentStatus `json:"payment_status"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	order, err := h.service.UpdatePaymentStatus(caller(c), c.Params("id"), req.PaymentStatus)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(caller(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}
