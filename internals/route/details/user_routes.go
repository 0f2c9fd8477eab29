// file: internals/route/details/user_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	userController "kodingku_backend/internals/features/users/user/controller"
)

func UserRoutes(private fiber.Router, db *gorm.DB) {
	ctrl := userController.NewUserController(db)

	users := private.Group("/users")
	users.Get("/editable-courses", ctrl.GetEditableCourses)
	users.Get("/:id", ctrl.GetByID)
	users.Get("/:id/roles", ctrl.GetRoles)
}
