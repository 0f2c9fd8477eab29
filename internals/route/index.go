// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/middlewares"
	routeDetails "kodingku_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, db)

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")
	routeDetails.CoursePublicRoutes(public, db)

	// ===================== PRIVATE (JWT) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u", middlewares.AuthMiddleware())

	log.Println("[INFO] Mounting User routes...")
	routeDetails.UserRoutes(private, db)

	log.Println("[INFO] Mounting Course routes...")
	routeDetails.CourseUserRoutes(private, db)

	log.Println("[INFO] Mounting Assignment routes...")
	routeDetails.AssignmentRoutes(private, db)
	routeDetails.AssignmentGroupRoutes(private, db)
	routeDetails.AssignmentTagRoutes(private, db)
	routeDetails.SampleSubmissionRoutes(private, db)

	log.Println("[INFO] Mounting Submission routes...")
	routeDetails.SubmissionRoutes(private, db)
	routeDetails.LogRoutes(private, db)
	routeDetails.ReviewRoutes(private, db)
	routeDetails.ReportRoutes(private, db)

	log.Println("[INFO] Mounting Portability routes...")
	routeDetails.PortabilityRoutes(private, db)
}
