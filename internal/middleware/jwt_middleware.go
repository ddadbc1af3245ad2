package middleware

import (
	"errors"
	"strings"

	"gerbang/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TokenFromRequest extracts the session token from the request, trying
// the cookie first and falling back to a Bearer authorization header.
// Returns an empty string when no token is present.
func TokenFromRequest(c *fiber.Ctx) string {
	if cookie := c.Cookies("token"); cookie != "" {
		return cookie
	}

	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// AuthRequired is a Fiber middleware that rejects requests without a
// valid session token. On success it stores the token's claims in the
// request Locals for downstream handlers.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, services.ErrTokenExpired) {
				msg = "Token has expired"
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": msg,
			})
		}

		c.Locals("user_id", claims["user_id"])
		c.Locals("email", claims["email"])
		c.Locals("name", claims["name"])

		return c.Next()
	}
}
