// Package middleware provides authentication, logging, metrics, and rate limiting for the HTTP layer.
package middleware

import (
	"context"
	"strings"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenResolver maps a presented bearer token to its user. A nil user with a nil
// error means the token is unknown or revoked.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthRequired rejects requests that do not carry a live session token.
func AuthRequired(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}

		user, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			Logger.ErrorContext(c.UserContext(), "token resolution failed", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if user == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or revoked token"))
		}

		setViewer(c, user.ID)
		return c.Next()
	}
}

// AuthOptional sets the viewer when a valid token is presented and otherwise lets the
// request through anonymously.
func AuthOptional(resolver TokenResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return c.Next()
		}
		user, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "optional auth: token resolution failed", "error", err)
			return c.Next()
		}
		if user != nil {
			setViewer(c, user.ID)
		}
		return c.Next()
	}
}

func setViewer(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// ViewerID returns the authenticated user id, or 0 for anonymous requests.
func ViewerID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}
