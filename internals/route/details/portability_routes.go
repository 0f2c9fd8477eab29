// file: internals/route/details/portability_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	portabilityController "kodingku_backend/internals/features/portability/controller"
)

func PortabilityRoutes(private fiber.Router, db *gorm.DB) {
	ctrl := portabilityController.NewPortabilityController(db)

	portability := private.Group("/portability")
	portability.Post("/bundles/import", ctrl.ImportBundle)
	portability.Post("/bundles/export", ctrl.ExportBundle)
	portability.Get("/courses/:course_id/bundle", ctrl.ExportCourse)
	portability.Get("/courses/:course_id/progsnap", ctrl.ExportProgSnap)
	portability.Get("/courses/:course_id/zip", ctrl.ExportCourseZip)
}
