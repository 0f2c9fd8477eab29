// file: internals/middlewares/auth_middleware.go
package middlewares

import (
	"log"

	"github.com/gofiber/fiber/v2"

	configs "kodingku_backend/internals/configs"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

// AuthMiddleware memverifikasi JWT dan menaruh identitas user di Locals.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if configs.JWTSecret == "" {
			log.Println("[ERROR] JWT_SECRET kosong")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		tokenString, err := helperAuth.ExtractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		claims, err := helperAuth.ParseAccessToken(tokenString)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid token")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_email", claims.Email)
		return c.Next()
	}
}
