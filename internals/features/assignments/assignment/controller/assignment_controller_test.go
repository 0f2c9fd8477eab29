// file: internals/features/assignments/assignment/controller/assignment_controller_test.go
package controller

import (
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kodingku_backend/internals/constants"
	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
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
		&userModel.UserModel{},
		&userModel.RoleModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestApp(db *gorm.DB, userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	ctrl := NewAssignmentController(db)
	app.Delete("/assignments/:id", ctrl.Delete)
	return app
}

func deleteStatus(t *testing.T, app *fiber.App, path string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("DELETE", path, nil))
	if err != nil {
		t.Fatalf("request gagal: %v", err)
	}
	return resp.StatusCode
}

func TestDeleteGuardedByInstructorRole(t *testing.T) {
	db := openTestDB(t)
	courseID := uint(7)

	assignment := assignmentModel.AssignmentModel{Name: "Soal 1", CourseID: &courseID}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	if err := db.Create(&userModel.RoleModel{
		Name:     constants.RoleInstructor,
		UserID:   1,
		CourseID: &courseID,
	}).Error; err != nil {
		t.Fatalf("seed role: %v", err)
	}

	if got := deleteStatus(t, newTestApp(db, 2), "/assignments/1"); got != fiber.StatusForbidden {
		t.Errorf("non-instructor dapat status %d, mau 403", got)
	}
	if got := deleteStatus(t, newTestApp(db, 1), "/assignments/1"); got != fiber.StatusOK {
		t.Errorf("instructor dapat status %d, mau 200", got)
	}

	var count int64
	db.Model(&assignmentModel.AssignmentModel{}).Count(&count)
	if count != 0 {
		t.Errorf("assignment masih tersisa %d", count)
	}
}

func TestDeleteAssignmentWithoutCourse(t *testing.T) {
	db := openTestDB(t)

	// Assignment yatim (course_id NULL) tidak bisa dicek role-nya
	assignment := assignmentModel.AssignmentModel{Name: "Yatim"}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	if got := deleteStatus(t, newTestApp(db, 1), "/assignments/1"); got != fiber.StatusConflict {
		t.Errorf("assignment tanpa course dapat status %d, mau 409", got)
	}
}
