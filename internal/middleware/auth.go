package middleware

import (
	"fmt"
	"strings"

	"github.com/Surya-Mathivanan/Redeem-app/internal/service"
	"github.com/Surya-Mathivanan/Redeem-app/internal/util"

	"github.com/gofiber/fiber/v2"
)

// Auth validates the bearer token and stores the user ID in the request
// context.
func Auth(tokens *util.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not logged in",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header",
			})
		}

		userID, err := tokens.Validate(tokenParts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}

// SuspensionGuard re-checks the caller's suspension on every
// authenticated request. A hit tells the client to drop its token and
// return to login.
func SuspensionGuard(suspensions *service.SuspensionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		if susp := suspensions.IsSuspended(userID); susp != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": fmt.Sprintf(
					"Your account has been suspended for misuse. Suspension ends: %s. Reason: %s",
					susp.SuspendedUntil.Format("2006-01-02 15:04:05"), susp.Reason),
				"suspended_until": susp.SuspendedUntil,
				"reason":          susp.Reason,
				"force_logout":    true,
				"redirect":        "/login",
			})
		}

		return c.Next()
	}
}
