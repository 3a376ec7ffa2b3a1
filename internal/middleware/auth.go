package middleware

import (
	"strings"

	"todo-backend/internal/auth"
	"todo-backend/internal/config"
	"todo-backend/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  fiber.StatusUnauthorized,
	})
}

// UseToken requires a valid access token and stores the caller's id and role
// in locals as "userID" and "role".
func UseToken(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return unauthorized(c, "No token provided")
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return unauthorized(c, "Invalid token format")
	}

	claims, err := config.Tokens.Parse(parts[1], auth.TypeAccess)
	switch err {
	case nil:
	case auth.ErrExpiredToken:
		return unauthorized(c, "Token expired")
	default:
		logger.SecurityLogger.Warn("Rejected bearer token",
			zap.String("ip", c.IP()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return unauthorized(c, "Invalid token")
	}

	c.Locals("userID", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}
