// file: internals/route/details/submission_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	logController "kodingku_backend/internals/features/submissions/log/controller"
	reportController "kodingku_backend/internals/features/submissions/report/controller"
	reviewController "kodingku_backend/internals/features/submissions/review/controller"
	submissionController "kodingku_backend/internals/features/submissions/submission/controller"
)

func SubmissionRoutes(private fiber.Router, db *gorm.DB) {
	ctrl := submissionController.NewSubmissionController(db)

	submissions := private.Group("/submissions")
	submissions.Post("/load", ctrl.LoadOrNew)
	submissions.Get("/assignment/:assignment_id/course/:course_id", ctrl.ByAssignment)
	submissions.Get("/student/:user_id/course/:course_id", ctrl.ByStudent)
	submissions.Get("/pending-review/:course_id", ctrl.ByPendingReview)
	submissions.Get("/:id", ctrl.GetByID)
	submissions.Put("/:id/code", ctrl.SaveCode)
	submissions.Put("/:id/grade", ctrl.UpdateGrade)
	submissions.Put("/:id/status", ctrl.UpdateStatus)
	submissions.Post("/:id/image", ctrl.SaveBlockImage)
	submissions.Get("/:id/history", ctrl.History)
}

func LogRoutes(private fiber.Router, db *gorm.DB) {
	ctrl := logController.NewLogController(db)

	logs := private.Group("/logs")
	logs.Post("/", ctrl.Record)
	logs.Get("/course/:course_id/history", ctrl.History)
}

func ReviewRoutes(private fiber.Router, db *gorm.DB) {
	ctrl := reviewController.NewReviewController(db)

	reviews := private.Group("/reviews")
	reviews.Get("/generic", ctrl.GetGeneric)
	reviews.Get("/submission/:submission_id", ctrl.ForSubmission)
	reviews.Post("/", ctrl.Create)
	reviews.Put("/:id", ctrl.Edit)
	reviews.Delete("/:id", ctrl.Delete)
}

func ReportRoutes(private fiber.Router, db *gorm.DB) {
	ctrl := reportController.NewReportController(db)

	reports := private.Group("/reports")
	reports.Get("/course/:course_id", ctrl.ByCourse)
	reports.Post("/", ctrl.Build)
	reports.Post("/graders", ctrl.AssignGrader)
	reports.Get("/course/:course_id/my-students", ctrl.MyStudents)
}
