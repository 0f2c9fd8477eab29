// file: internals/route/details/course_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	courseController "kodingku_backend/internals/features/courses/course/controller"
)

func CoursePublicRoutes(public fiber.Router, db *gorm.DB) {
	ctrl := courseController.NewCourseController(db)

	courses := public.Group("/courses")
	courses.Get("/", ctrl.GetPublic)
	courses.Get("/:id", ctrl.GetByID)
	courses.Get("/:id/groups", ctrl.GetGroups)
}

func CourseUserRoutes(private fiber.Router, db *gorm.DB) {
	ctrl := courseController.NewCourseController(db)

	courses := private.Group("/courses")
	courses.Post("/", ctrl.Create)
	courses.Put("/:id/name", ctrl.Rename)
	courses.Delete("/:id", ctrl.Delete)
	courses.Get("/:id/students", ctrl.GetStudents)
	courses.Put("/:id/roles", ctrl.UpdateRoles)
}
