package middleware

import (
	"strings"

	"pharmacy/internal/apperr"
	"pharmacy/internal/models"
	"pharmacy/internal/services"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// TokenCookie is the cookie login sets and AuthRequired accepts.
const TokenCookie = "token"

const principalKey = "principal"

// Guards bundles the route guards handlers attach to protected routes.
type Guards struct {
	Auth  fiber.Handler
	Admin fiber.Handler
}

// NewGuards builds the standard guards around authService.
func NewGuards(authService *services.AuthService) Guards {
	return Guards{Auth: AuthRequired(authService), Admin: AdminOnly()}
}

// AuthRequired is a Fiber middleware to check for a valid JWT token, taken
// from the Authorization header or the token cookie.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractToken(c)
		if err != nil {
			return deny(c, err)
		}

		principal, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.WithError(err).WithField("path", c.Path()).Debug("JWT validation failed")
			return deny(c, apperr.Unauthorized("invalid or expired token"))
		}

		// Blocked or deactivated accounts lose access even with a live token.
		user, err := authService.CurrentUser(principal)
		if err != nil {
			return deny(c, err)
		}
		principal.Role = user.Role

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// AdminOnly rejects callers whose principal is not an admin. It must run after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return deny(c, apperr.Unauthorized("authentication required"))
		}
		if !principal.IsAdmin() {
			return deny(c, apperr.Forbidden("admin access required"))
		}
		return c.Next()
	}
}

// PrincipalFrom returns the caller stored by AuthRequired.
func PrincipalFrom(c *fiber.Ctx) (models.Principal, bool) {
	principal, ok := c.Locals(principalKey).(models.Principal)
	return principal, ok
}

func extractToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if cookie := c.Cookies(TokenCookie); cookie != "" {
			return cookie, nil
		}
		return "", apperr.Unauthorized("authorization header is required")
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.Unauthorized("authorization header format must be 'Bearer <token>'")
	}
	return strings.TrimSpace(parts[1]), nil
}

func deny(c *fiber.Ctx, err error) error {
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
}
