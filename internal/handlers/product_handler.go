package handlers

import (
	"pharmacy/internal/middleware"
	"pharmacy/internal/models"
	"pharmacy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product routes. Reads are public.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, g middleware.Guards) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", g.Auth, g.Admin, h.HandleCreateProduct)
	productRoutes.Put("/:id", g.Auth, g.Admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", g.Auth, g.Admin, h.HandleDeleteProduct)
}

// HandleGetProducts lists products, filtered by category, search and requires_prescription.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	rx, err := queryBool(c, "requires_prescription")
	if err != nil {
		return respondError(c, err)
	}
	products, err := h.service.GetAllProducts(models.ProductFilter{
		Category:             c.Query("category"),
		Search:               c.Query("search"),
		RequiresPrescription: rx,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := parseBody(c, &product); err != nil {
		return respondError(c, err)
	}
	product.ID = ""
	if err := h.service.CreateProduct(caller(c), &product); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct overwrites the product named in the path.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := parseBody(c, &product); err != nil {
		return respondError(c, err)
	}
	product.ID = c.Params("id")
	if err := h.service.UpdateProduct(caller(c), &product); err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(caller(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
