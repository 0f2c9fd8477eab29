// file: internals/features/assignments/group/service/assignment_group_service_test.go
package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	"kodingku_backend/internals/features/assignments/group/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("buka sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&assignmentModel.AssignmentModel{},
		&model.AssignmentGroupModel{},
		&model.AssignmentGroupMembershipModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestNewAssignsDensePositions(t *testing.T) {
	db := openTestDB(t)
	svc := NewAssignmentGroupService(db)

	first, err := svc.New(1, 10, "Minggu 1")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if first.Position != 1 {
		t.Errorf("group pertama position = %d, want 1", first.Position)
	}

	second, _ := svc.New(1, 10, "Minggu 2")
	if second.Position != 2 {
		t.Errorf("group kedua position = %d, want 2", second.Position)
	}

	// course lain mulai dari 1 lagi
	other, _ := svc.New(1, 99, "Course Lain")
	if other.Position != 1 {
		t.Errorf("group course lain position = %d, want 1", other.Position)
	}

	if first.Name != "Minggu 1" {
		t.Errorf("Name = %q", first.Name)
	}
	unnamed, _ := svc.New(1, 10, "")
	if unnamed.Name != "Untitled Group" {
		t.Errorf("nama default = %q", unnamed.Name)
	}
}

func TestRemoveShiftsPositions(t *testing.T) {
	db := openTestDB(t)
	svc := NewAssignmentGroupService(db)

	g1, _ := svc.New(1, 10, "A")
	g2, _ := svc.New(1, 10, "B")
	g3, _ := svc.New(1, 10, "C")

	// membership di group yang dihapus ikut hilang
	if err := db.Create(&model.AssignmentGroupMembershipModel{
		AssignmentGroupID: g2.ID, AssignmentID: 77,
	}).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}

	if err := svc.Remove(g2.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	reloaded1, _ := svc.GetByID(g1.ID)
	reloaded3, _ := svc.GetByID(g3.ID)
	if reloaded1.Position != 1 {
		t.Errorf("group A position = %d, want 1", reloaded1.Position)
	}
	if reloaded3.Position != 2 {
		t.Errorf("group C position = %d, want 2 (rapat)", reloaded3.Position)
	}

	var memberships int64
	db.Model(&model.AssignmentGroupMembershipModel{}).
		Where("assignment_group_id = ?", g2.ID).
		Count(&memberships)
	if memberships != 0 {
		t.Errorf("membership group terhapus = %d, want 0", memberships)
	}
}

func TestMoveAssignment(t *testing.T) {
	db := openTestDB(t)
	svc := NewAssignmentGroupService(db)

	g1, _ := svc.New(1, 10, "A")
	g2, _ := svc.New(1, 10, "B")

	if err := svc.MoveAssignment(5, int(g1.ID)); err != nil {
		t.Fatalf("MoveAssignment() error = %v", err)
	}
	memberships, _ := svc.GetMemberships(g1.ID)
	if len(memberships) != 1 || memberships[0].AssignmentID != 5 {
		t.Fatalf("membership awal = %+v", memberships)
	}

	// pindah group: membership lama hilang, yang baru dibuat
	if err := svc.MoveAssignment(5, int(g2.ID)); err != nil {
		t.Fatalf("MoveAssignment() pindah error = %v", err)
	}
	oldMemberships, _ := svc.GetMemberships(g1.ID)
	newMemberships, _ := svc.GetMemberships(g2.ID)
	if len(oldMemberships) != 0 {
		t.Errorf("membership group lama masih %d", len(oldMemberships))
	}
	if len(newMemberships) != 1 {
		t.Errorf("membership group baru = %d, want 1", len(newMemberships))
	}

	// -1 berarti keluarkan dari semua group
	if err := svc.MoveAssignment(5, -1); err != nil {
		t.Fatalf("MoveAssignment(-1) error = %v", err)
	}
	var total int64
	db.Model(&model.AssignmentGroupMembershipModel{}).
		Where("assignment_id = ?", 5).
		Count(&total)
	if total != 0 {
		t.Errorf("membership tersisa = %d, want 0", total)
	}
}

func TestGetUngroupedAssignments(t *testing.T) {
	db := openTestDB(t)
	svc := NewAssignmentGroupService(db)

	courseID := uint(10)
	urlA, urlB := "a", "b"
	inGroup := assignmentModel.AssignmentModel{Name: "Dalam Group", URL: &urlA, CourseID: &courseID}
	loose := assignmentModel.AssignmentModel{Name: "Lepas", URL: &urlB, CourseID: &courseID}
	if err := db.Create(&inGroup).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&loose).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	group, _ := svc.New(1, courseID, "G")
	if err := svc.MoveAssignment(inGroup.ID, int(group.ID)); err != nil {
		t.Fatalf("MoveAssignment() error = %v", err)
	}

	ungrouped, err := svc.GetUngroupedAssignments(courseID)
	if err != nil {
		t.Fatalf("GetUngroupedAssignments() error = %v", err)
	}
	if len(ungrouped) != 1 || ungrouped[0].ID != loose.ID {
		t.Errorf("ungrouped = %+v, want hanya %d", ungrouped, loose.ID)
	}
}
