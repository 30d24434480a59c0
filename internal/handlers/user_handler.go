package handlers

import (
	"pharmacy/internal/middleware"
	"pharmacy/internal/models"
	"pharmacy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles wishlist and account administration requests.
type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(router fiber.Router, g middleware.Guards) {
	userRoutes := router.Group("/users", g.Auth)
	userRoutes.Get("/wishlist", h.HandleGetWishlist)
	userRoutes.Post("/wishlist/:productId", h.HandleAddToWishlist)
	userRoutes.Delete("/wishlist/:productId", h.HandleRemoveFromWishlist)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Put("/:id/status", g.Admin, h.HandleSetStatus)
}

func (h *UserHandler) HandleGetWishlist(c *fiber.Ctx) error {
	products, err := h.service.Wishlist(caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *UserHandler) HandleAddToWishlist(c *fiber.Ctx) error {
	user, err := h.service.AddToWishlist(caller(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"wishlist": user.Wishlist})
}

func (h *UserHandler) HandleRemoveFromWishlist(c *fiber.Ctx) error {
	user, err := h.service.RemoveFromWishlist(caller(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"wishlist": user.Wishlist})
}

func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(caller(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleSetStatus(c *fiber.Ctx) error {
	var req struct {
		Status models.UserStatus `json:"status"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	user, err := h.service.SetStatus(caller(c), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
