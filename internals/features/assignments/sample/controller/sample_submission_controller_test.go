// file: internals/features/assignments/sample/controller/sample_submission_controller_test.go
package controller

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kodingku_backend/internals/constants"
	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	sampleModel "kodingku_backend/internals/features/assignments/sample/model"
	userModel "kodingku_backend/internals/features/users/user/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gagal buka sqlite in-memory: %v", err)
	}
	if err := db.AutoMigrate(
		&assignmentModel.AssignmentModel{},
		&sampleModel.SampleSubmissionModel{},
		&userModel.UserModel{},
		&userModel.RoleModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func postSample(t *testing.T, db *gorm.DB, userID uint, body string) int {
	t.Helper()
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	ctrl := NewSampleSubmissionController(db)
	app.Post("/samples", ctrl.Create)

	req := httptest.NewRequest("POST", "/samples", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request gagal: %v", err)
	}
	return resp.StatusCode
}

func TestCreateSampleNeedsAssignmentCourse(t *testing.T) {
	db := openTestDB(t)
	courseID := uint(5)

	bound := assignmentModel.AssignmentModel{Name: "Soal 1", CourseID: &courseID}
	orphan := assignmentModel.AssignmentModel{Name: "Yatim"}
	if err := db.Create(&bound).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	if err := db.Create(&orphan).Error; err != nil {
		t.Fatalf("seed assignment yatim: %v", err)
	}
	if err := db.Create(&userModel.RoleModel{
		Name:     constants.RoleInstructor,
		UserID:   1,
		CourseID: &courseID,
	}).Error; err != nil {
		t.Fatalf("seed role: %v", err)
	}

	if got := postSample(t, db, 1, `{"assignment_id":1,"name":"Contoh benar"}`); got != fiber.StatusCreated {
		t.Errorf("instructor dapat status %d, mau 201", got)
	}
	if got := postSample(t, db, 2, `{"assignment_id":1,"name":"Contoh"}`); got != fiber.StatusForbidden {
		t.Errorf("non-instructor dapat status %d, mau 403", got)
	}
	if got := postSample(t, db, 1, `{"assignment_id":2,"name":"Contoh"}`); got != fiber.StatusConflict {
		t.Errorf("assignment tanpa course dapat status %d, mau 409", got)
	}
}
