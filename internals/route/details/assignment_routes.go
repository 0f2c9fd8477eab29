// file: internals/route/details/assignment_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	assignmentController "kodingku_backend/internals/features/assignments/assignment/controller"
	groupController "kodingku_backend/internals/features/assignments/group/controller"
	sampleController "kodingku_backend/internals/features/assignments/sample/controller"
	tagController "kodingku_backend/internals/features/assignments/tag/controller"
)

func AssignmentRoutes(private fiber.Router, db *gorm.DB) {
	ctrl := assignmentController.NewAssignmentController(db)

	assignments := private.Group("/assignments")
	assignments.Get("/course/:course_id", ctrl.ByCourse)
	assignments.Post("/", ctrl.Create)
	assignments.Get("/:id", ctrl.GetByID)
	assignments.Get("/:id/export", ctrl.Export)
	assignments.Delete("/:id", ctrl.Delete)
	assignments.Put("/:id/file", ctrl.SaveFile)
	assignments.Put("/:id/setting", ctrl.UpdateSetting)
	assignments.Put("/:id/course", ctrl.MoveCourse)
}

func AssignmentGroupRoutes(private fiber.Router, db *gorm.DB) {
	ctrl := groupController.NewAssignmentGroupController(db)

	groups := private.Group("/assignment-groups")
	groups.Post("/", ctrl.Create)
	groups.Get("/ungrouped/:course_id", ctrl.GetUngrouped)
	groups.Put("/move", ctrl.MoveAssignment)
	groups.Get("/:id", ctrl.GetByID)
	groups.Get("/:id/assignments", ctrl.GetAssignments)
	groups.Delete("/:id", ctrl.Delete)
}

func AssignmentTagRoutes(private fiber.Router, db *gorm.DB) {
	ctrl := tagController.NewAssignmentTagController(db)

	tags := private.Group("/assignment-tags")
	tags.Get("/", ctrl.GetAll)
	tags.Get("/course/:course_id", ctrl.ByCourse)
	tags.Post("/", ctrl.Create)
	tags.Post("/attach", ctrl.Attach)
	tags.Post("/detach", ctrl.Detach)
}

func SampleSubmissionRoutes(private fiber.Router, db *gorm.DB) {
	ctrl := sampleController.NewSampleSubmissionController(db)

	samples := private.Group("/sample-submissions")
	samples.Get("/assignment/:assignment_id", ctrl.ByAssignment)
	samples.Post("/", ctrl.Create)
	samples.Put("/:id", ctrl.Update)
	samples.Delete("/:id", ctrl.Delete)
}
