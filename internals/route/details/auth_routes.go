// file: internals/route/details/auth_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authController "kodingku_backend/internals/features/users/auth/controller"
	"kodingku_backend/internals/middlewares"
)

func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ctrl := authController.NewAuthController(db)

	auth := app.Group("/api/auth")
	auth.Post("/register", ctrl.Register)
	auth.Post("/login", ctrl.Login)
	auth.Post("/login/google", ctrl.GoogleLogin)
	auth.Get("/me", middlewares.AuthMiddleware(), ctrl.Me)
}
