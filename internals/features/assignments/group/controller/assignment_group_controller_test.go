// file: internals/features/assignments/group/controller/assignment_group_controller_test.go
package controller

import (
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kodingku_backend/internals/constants"
	groupModel "kodingku_backend/internals/features/assignments/group/model"
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
		&groupModel.AssignmentGroupModel{},
		&groupModel.AssignmentGroupMembershipModel{},
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
	ctrl := NewAssignmentGroupController(db)
	app.Delete("/groups/:id", ctrl.Delete)
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

func TestDeleteGuardedByCourseRole(t *testing.T) {
	db := openTestDB(t)
	courseID := uint(3)

	group := groupModel.AssignmentGroupModel{Name: "Minggu 1", CourseID: &courseID, Position: 1}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}
	if err := db.Create(&userModel.RoleModel{
		Name:     constants.RoleInstructor,
		UserID:   1,
		CourseID: &courseID,
	}).Error; err != nil {
		t.Fatalf("seed role: %v", err)
	}

	if got := deleteStatus(t, newTestApp(db, 2), "/groups/1"); got != fiber.StatusForbidden {
		t.Errorf("non-instructor dapat status %d, mau 403", got)
	}
	if got := deleteStatus(t, newTestApp(db, 1), "/groups/1"); got != fiber.StatusOK {
		t.Errorf("instructor dapat status %d, mau 200", got)
	}
}

func TestDeleteGroupWithoutCourse(t *testing.T) {
	db := openTestDB(t)

	group := groupModel.AssignmentGroupModel{Name: "Lepas", Position: 1}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}

	if got := deleteStatus(t, newTestApp(db, 1), "/groups/1"); got != fiber.StatusConflict {
		t.Errorf("group tanpa course dapat status %d, mau 409", got)
	}
}
