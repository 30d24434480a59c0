package handlers

import (
	"path"
	"strings"

	"pharmacy/internal/middleware"
	"pharmacy/internal/models"
	"pharmacy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PrescriptionHandler handles HTTP requests for prescriptions.
type PrescriptionHandler struct {
	service *services.PrescriptionService
}

func NewPrescriptionHandler(service *services.PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{service: service}
}

func (h *PrescriptionHandler) RegisterRoutes(router fiber.Router, g middleware.Guards) {
	rxRoutes := router.Group("/prescriptions", g.Auth)
	rxRoutes.Post("/upload", h.HandleUpload)
	rxRoutes.Get("/user", h.HandleGetUserPrescriptions)
	rxRoutes.Get("/admin/all", g.Admin, h.HandleGetAllPrescriptions)
	rxRoutes.Get("/:id", h.HandleGetPrescription)
	rxRoutes.Get("/:id/image", h.HandleGetImage)
	rxRoutes.Put("/:id/link-products", h.HandleLinkProducts)
	rxRoutes.Put("/:id/verify", g.Admin, h.HandleVerify)
}

func (h *PrescriptionHandler) HandleUpload(c *fiber.Ctx) error {
	var req services.UploadPrescriptionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	rx, err := h.service.Upload(caller(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rx)
}

func (h *PrescriptionHandler) HandleGetUserPrescriptions(c *fiber.Ctx) error {
	list, err := h.service.ListUser(caller(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// HandleGetAllPrescriptions supports ?status=, ?doctor=, ?from=, ?to= and ?verified=.
func (h *PrescriptionHandler) HandleGetAllPrescriptions(c *fiber.Ctx) error {
	filter := models.PrescriptionFilter{
		Status: models.PrescriptionStatus(c.Query("status")),
		Doctor: c.Query("doctor"),
	}
	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return respondError(c, err)
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return respondError(c, err)
	}
	if filter.Verified, err = queryBool(c, "verified"); err != nil {
		return respondError(c, err)
	}

	list, err := h.service.ListAll(caller(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

func (h *PrescriptionHandler) HandleGetPrescription(c *fiber.Ctx) error {
	rx, err := h.service.Get(caller(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rx)
}

// HandleGetImage streams the uploaded image to its owner or an admin.
func (h *PrescriptionHandler) HandleGetImage(c *fiber.Ctx) error {
	rx, r, err := h.service.Image(caller(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Type(strings.TrimPrefix(path.Ext(rx.ImageURL), "."))
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.SendStream(r)
}

func (h *PrescriptionHandler) HandleLinkProducts(c *fiber.Ctx) error {
	var req struct {
		ProductIDs []string `json:"product_ids"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	rx, err := h.service.LinkProducts(caller(c), c.Params("id"), req.ProductIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rx)
}

func (h *PrescriptionHandler) HandleVerify(c *fiber.Ctx) error {
	var req services.VerifyPrescriptionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	rx, err := h.service.Verify(caller(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rx)
}
