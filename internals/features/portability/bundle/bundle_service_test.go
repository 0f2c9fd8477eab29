// file: internals/features/portability/bundle/bundle_service_test.go
package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	groupModel "kodingku_backend/internals/features/assignments/group/model"
	courseModel "kodingku_backend/internals/features/courses/course/model"
	userModel "kodingku_backend/internals/features/users/user/model"
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
		&userModel.UserModel{},
		&courseModel.CourseModel{},
		&assignmentModel.AssignmentModel{},
		&groupModel.AssignmentGroupModel{},
		&groupModel.AssignmentGroupMembershipModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleBundle() Bundle {
	return Bundle{
		Course: map[string]any{
			"_schema_version": 2,
			"name":            "Kelas Python",
			"url":             "kelas-python",
		},
		Assignments: []map[string]any{
			{
				"_schema_version": 2,
				"name":            "Soal B",
				"url":             "soal-b",
				"type":            "blockpy",
				"version":         4,
			},
			{
				"_schema_version": 2,
				"name":            "Soal A",
				"url":             "soal-a",
				"type":            "blockpy",
			},
		},
		Groups: []map[string]any{
			{
				"_schema_version": 2,
				"name":            "Minggu 1",
				"url":             "minggu-1",
				"position":        1,
			},
		},
		Memberships: []map[string]any{
			{
				"_schema_version":      1,
				"assignment_url":       "soal-a",
				"assignment_group_url": "minggu-1",
				"position":             0,
			},
		},
	}
}

func TestImportBundleCreatesEverything(t *testing.T) {
	db := openTestDB(t)
	svc := NewBundleService(db)

	courseID, err := svc.ImportBundle(sampleBundle(), 1, nil)
	if err != nil {
		t.Fatalf("ImportBundle() error = %v", err)
	}

	var course courseModel.CourseModel
	if err := db.First(&course, courseID).Error; err != nil {
		t.Fatalf("course tidak dibuat: %v", err)
	}
	if course.Name != "Kelas Python" {
		t.Errorf("course name = %q", course.Name)
	}
	if course.OwnerID == nil || *course.OwnerID != 1 {
		t.Errorf("owner_id = %v, want 1 (override import)", course.OwnerID)
	}

	var assignments []assignmentModel.AssignmentModel
	db.Where("course_id = ?", courseID).Find(&assignments)
	if len(assignments) != 2 {
		t.Fatalf("jumlah assignment = %d, want 2", len(assignments))
	}
	for _, a := range assignments {
		if a.URL != nil && *a.URL == "soal-b" && a.Version != 4 {
			t.Errorf("version soal-b = %d, want 4 (ikut payload)", a.Version)
		}
	}

	var memberships []groupModel.AssignmentGroupMembershipModel
	db.Find(&memberships)
	if len(memberships) != 1 {
		t.Fatalf("jumlah membership = %d, want 1", len(memberships))
	}
	var group groupModel.AssignmentGroupModel
	if err := db.First(&group, memberships[0].AssignmentGroupID).Error; err != nil {
		t.Fatalf("group membership: %v", err)
	}
	if group.URL == nil || *group.URL != "minggu-1" {
		t.Errorf("membership menunjuk group %v", group.URL)
	}
}

func TestImportBundleMergesByURL(t *testing.T) {
	db := openTestDB(t)
	svc := NewBundleService(db)

	if _, err := svc.ImportBundle(sampleBundle(), 1, nil); err != nil {
		t.Fatalf("import pertama: %v", err)
	}

	// import ulang bundle yang sama: merge, bukan duplikat
	updated := sampleBundle()
	updated.Course["name"] = "Kelas Python (Revisi)"
	if _, err := svc.ImportBundle(updated, 1, nil); err != nil {
		t.Fatalf("import kedua: %v", err)
	}

	var courses, assignments, groups, memberships int64
	db.Model(&courseModel.CourseModel{}).Count(&courses)
	db.Model(&assignmentModel.AssignmentModel{}).Count(&assignments)
	db.Model(&groupModel.AssignmentGroupModel{}).Count(&groups)
	db.Model(&groupModel.AssignmentGroupMembershipModel{}).Count(&memberships)
	if courses != 1 || assignments != 2 || groups != 1 || memberships != 1 {
		t.Errorf("duplikat setelah re-import: c=%d a=%d g=%d m=%d", courses, assignments, groups, memberships)
	}

	var course courseModel.CourseModel
	db.Where("url = ?", "kelas-python").First(&course)
	if course.Name != "Kelas Python (Revisi)" {
		t.Errorf("nama course tidak ter-update: %q", course.Name)
	}
}

func TestImportBundleAtomicOnBadMembership(t *testing.T) {
	db := openTestDB(t)
	svc := NewBundleService(db)

	broken := sampleBundle()
	broken.Memberships = append(broken.Memberships, map[string]any{
		"_schema_version":      1,
		"assignment_url":       "tidak-ada",
		"assignment_group_url": "minggu-1",
	})

	_, err := svc.ImportBundle(broken, 1, nil)
	if !errors.Is(err, ErrMissingReference) {
		t.Fatalf("error = %v, want ErrMissingReference", err)
	}

	// seluruh import batal, termasuk course yang sudah sempat dibuat
	var courses int64
	db.Model(&courseModel.CourseModel{}).Count(&courses)
	if courses != 0 {
		t.Errorf("course tersisa = %d, want 0 (rollback)", courses)
	}
}

func TestImportBundleNeedsCourse(t *testing.T) {
	db := openTestDB(t)
	svc := NewBundleService(db)

	noCourse := sampleBundle()
	noCourse.Course = nil
	noCourse.Memberships = nil
	noCourse.Groups = nil

	_, err := svc.ImportBundle(noCourse, 1, nil)
	if !errors.Is(err, ErrMissingCourse) {
		t.Fatalf("error = %v, want ErrMissingCourse", err)
	}

	// dengan course tujuan eksplisit, assignment masuk ke course itu
	target := courseModel.CourseModel{Name: "Tujuan"}
	if err := db.Create(&target).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	courseID, err := svc.ImportBundle(noCourse, 1, &target.ID)
	if err != nil {
		t.Fatalf("ImportBundle() error = %v", err)
	}
	if courseID != target.ID {
		t.Errorf("course id = %d, want %d", courseID, target.ID)
	}
	var assignments int64
	db.Model(&assignmentModel.AssignmentModel{}).Where("course_id = ?", target.ID).Count(&assignments)
	if assignments != 2 {
		t.Errorf("assignment di course tujuan = %d, want 2", assignments)
	}
}

func TestExportCourseRoundtrip(t *testing.T) {
	db := openTestDB(t)
	svc := NewBundleService(db)

	courseID, err := svc.ImportBundle(sampleBundle(), 1, nil)
	if err != nil {
		t.Fatalf("ImportBundle() error = %v", err)
	}

	exported, err := svc.ExportCourse(courseID)
	if err != nil {
		t.Fatalf("ExportCourse() error = %v", err)
	}

	course, ok := exported["course"].(map[string]any)
	if !ok || course["name"] != "Kelas Python" {
		t.Errorf("course export = %v", exported["course"])
	}
	assignments, ok := exported["assignments"].([]map[string]any)
	if !ok || len(assignments) != 2 {
		t.Fatalf("assignments export = %v", exported["assignments"])
	}
	// urut nama
	if assignments[0]["name"] != "Soal A" || assignments[1]["name"] != "Soal B" {
		t.Errorf("urutan assignment: %v, %v", assignments[0]["name"], assignments[1]["name"])
	}
	groups, _ := exported["assignment_groups"].([]map[string]any)
	if len(groups) != 1 {
		t.Errorf("groups export = %v", exported["assignment_groups"])
	}
	memberships, _ := exported["assignment_memberships"].([]map[string]any)
	if len(memberships) != 1 {
		t.Fatalf("memberships export = %v", exported["assignment_memberships"])
	}
	// membership selalu di-encode dengan versi 1
	if memberships[0]["_schema_version"] != groupModel.MembershipSchemaVersion {
		t.Errorf("membership _schema_version = %v, want %d",
			memberships[0]["_schema_version"], groupModel.MembershipSchemaVersion)
	}
}

// "Soal 10" harus sesudah "Soal 2": urut natural, bukan lexical.
func TestExportCourseNaturalOrder(t *testing.T) {
	db := openTestDB(t)
	svc := NewBundleService(db)

	course := courseModel.CourseModel{Name: "Kelas"}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	for _, seed := range []struct{ name, url string }{
		{"Soal 10", "soal-10"},
		{"Soal 2", "soal-2"},
		{"Soal 1", "soal-1"},
	} {
		url := seed.url
		assignment := assignmentModel.AssignmentModel{
			Name: seed.name, URL: &url, CourseID: &course.ID,
		}
		if err := db.Create(&assignment).Error; err != nil {
			t.Fatalf("seed assignment %q: %v", seed.name, err)
		}
	}

	exported, err := svc.ExportCourse(course.ID)
	if err != nil {
		t.Fatalf("ExportCourse() error = %v", err)
	}
	assignments, _ := exported["assignments"].([]map[string]any)
	if len(assignments) != 3 {
		t.Fatalf("assignments export = %v", exported["assignments"])
	}
	want := []string{"Soal 1", "Soal 2", "Soal 10"}
	for i, name := range want {
		if assignments[i]["name"] != name {
			t.Errorf("urutan[%d] = %v, mau %q", i, assignments[i]["name"], name)
		}
	}
}

func TestExportBundleIdentifiers(t *testing.T) {
	db := openTestDB(t)
	svc := NewBundleService(db)

	courseID, err := svc.ImportBundle(sampleBundle(), 1, nil)
	if err != nil {
		t.Fatalf("ImportBundle() error = %v", err)
	}

	exported, err := svc.ExportBundle(map[string][]any{
		"courses":     {int(courseID)},
		"assignments": {"soal-a"},
	})
	if err != nil {
		t.Fatalf("ExportBundle() error = %v", err)
	}
	if len(exported["courses"]) != 1 || len(exported["assignments"]) != 1 {
		t.Fatalf("export = %v", exported)
	}
	if exported["assignments"][0]["url"] == nil {
		t.Error("assignment export tanpa url")
	}

	if _, err := svc.ExportBundle(map[string][]any{"planets": {1}}); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("kategori asing: error = %v", err)
	}
	if _, err := svc.ExportBundle(map[string][]any{"courses": {3.14}}); !errors.Is(err, ErrUnsupportedIdentifier) {
		t.Errorf("identifier asing: error = %v", err)
	}
}

// Request yang datang lewat HTTP di-decode ke map[string][]any, jadi angka
// JSON muncul sebagai float64 (atau json.Number), bukan int.
func TestExportBundleJSONDecodedIDs(t *testing.T) {
	db := openTestDB(t)
	svc := NewBundleService(db)

	courseID, err := svc.ImportBundle(sampleBundle(), 1, nil)
	if err != nil {
		t.Fatalf("ImportBundle() error = %v", err)
	}

	var request map[string][]any
	body := fmt.Sprintf(`{"courses":[%d]}`, courseID)
	if err := sonic.Unmarshal([]byte(body), &request); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	exported, err := svc.ExportBundle(request)
	if err != nil {
		t.Fatalf("ExportBundle dengan id numerik JSON gagal: %v", err)
	}
	if len(exported["courses"]) != 1 {
		t.Fatalf("export = %v", exported)
	}
	if exported["courses"][0]["url"] == nil {
		t.Error("course export tanpa url")
	}

	numbered, err := svc.ExportBundle(map[string][]any{
		"courses": {json.Number(fmt.Sprint(courseID))},
	})
	if err != nil {
		t.Fatalf("ExportBundle dengan json.Number gagal: %v", err)
	}
	if len(numbered["courses"]) != 1 {
		t.Fatalf("export json.Number = %v", numbered)
	}
}
