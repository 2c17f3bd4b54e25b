package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"tungra/pkg/auth"
)

// AuthMiddleware verifies bearer JWT tokens and stores the authenticated
// user's identity in the request context.
func AuthMiddleware(jwtAuth *auth.JWTAuth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := auth.ExtractToken(authHeader)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or invalid authorization token",
			})
		}

		user, err := jwtAuth.VerifyToken(token)
		if err != nil {
			log.Printf("❌ Auth failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_name", user.Username)
		c.Locals("user_role", user.Role)

		return c.Next()
	}
}
