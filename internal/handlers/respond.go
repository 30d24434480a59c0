package handlers

import (
	"strconv"
	"strings"
	"time"

	"pharmacy/internal/apperr"
	"pharmacy/internal/middleware"
	"pharmacy/internal/models"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// respondError writes err as {"error": msg} with the status its kind maps to.
func respondError(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	entry := log.WithError(err).WithFields(log.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"status": status,
	})
	if status >= fiber.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}

// caller returns the principal AuthRequired stored on the request.
func caller(c *fiber.Ctx) models.Principal {
	p, _ := middleware.PrincipalFrom(c)
	return p
}

func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("query parameter '%s' must be true or false", key)
	}
	return &v, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates.
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Validation("query parameter '%s' must be a date (YYYY-MM-DD) or RFC 3339 timestamp", key)
}
