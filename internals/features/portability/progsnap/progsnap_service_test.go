// file: internals/features/portability/progsnap/progsnap_service_test.go
package progsnap

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	groupModel "kodingku_backend/internals/features/assignments/group/model"
	courseModel "kodingku_backend/internals/features/courses/course/model"
	logModel "kodingku_backend/internals/features/submissions/log/model"
	userModel "kodingku_backend/internals/features/users/user/model"
)

func TestCodeStateFingerprint(t *testing.T) {
	a := codeState{"answer.py": "x = 1", "helper.py": "pass"}
	b := codeState{"helper.py": "pass", "answer.py": "x = 1"}
	if a.fingerprint() != b.fingerprint() {
		t.Error("urutan map tidak boleh mempengaruhi fingerprint")
	}

	c := codeState{"answer.py": "x = 2", "helper.py": "pass"}
	if a.fingerprint() == c.fingerprint() {
		t.Error("isi beda tapi fingerprint sama")
	}

	// panjang dikodekan supaya batas path/isi tidak ambigu
	d := codeState{"a": "bc"}
	e := codeState{"ab": "c"}
	if d.fingerprint() == e.fingerprint() {
		t.Error("pergeseran batas path/isi tidak terdeteksi")
	}

	clone := a.clone()
	clone["answer.py"] = "diubah"
	if a["answer.py"] != "x = 1" {
		t.Error("clone() tidak lepas dari aslinya")
	}
}

func TestClientTimestampToISO8601(t *testing.T) {
	if got := clientTimestampToISO8601(""); got != "" {
		t.Errorf("timestamp kosong = %q", got)
	}
	if got := clientTimestampToISO8601("bukan angka"); got != "" {
		t.Errorf("timestamp rusak = %q", got)
	}
	ms := time.Date(2024, 3, 1, 12, 30, 45, 0, time.Local).UnixMilli()
	got := clientTimestampToISO8601(strconv.FormatInt(ms, 10))
	if got != "2024-03-01T12:30:45" {
		t.Errorf("clientTimestampToISO8601 = %q", got)
	}
}

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
		&userModel.RoleModel{},
		&courseModel.CourseModel{},
		&assignmentModel.AssignmentModel{},
		&groupModel.AssignmentGroupModel{},
		&groupModel.AssignmentGroupMembershipModel{},
		&logModel.LogModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func readZipEntry(t *testing.T, r *zip.Reader, name string) string {
	t.Helper()
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("buka %s: %v", name, err)
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("baca %s: %v", name, err)
			}
			return string(data)
		}
	}
	t.Fatalf("entry %s tidak ada di zip", name)
	return ""
}

func TestExportProducesDataset(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgSnapService(db)

	course := courseModel.CourseModel{Name: "Kelas"}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	url := "soal-1"
	assignment := assignmentModel.AssignmentModel{Name: "Soal 1", URL: &url, CourseID: &course.ID}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	user := userModel.UserModel{FirstName: "Budi", LastName: "Santoso", Email: "budi@contoh.id"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	entries := []logModel.LogModel{
		{AssignmentID: &assignment.ID, CourseID: &course.ID, SubjectID: &user.ID,
			EventType: "File.Create", FilePath: "answer.py", Message: "x = 0"},
		{AssignmentID: &assignment.ID, CourseID: &course.ID, SubjectID: &user.ID,
			EventType: "File.Edit", FilePath: "answer.py", Message: "x = 1"},
		{AssignmentID: &assignment.ID, CourseID: &course.ID, SubjectID: &user.ID,
			EventType: "Run.Program"},
	}
	for i := range entries {
		if err := db.Create(&entries[i]).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := svc.Export(context.Background(), &buf, course.ID, nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip tidak valid: %v", err)
	}

	main := readZipEntry(t, r, "MainTable.csv")
	rows, err := csv.NewReader(strings.NewReader(main)).ReadAll()
	if err != nil {
		t.Fatalf("MainTable.csv rusak: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("baris MainTable = %d, want header + 3 event", len(rows))
	}
	if len(rows[0]) != len(MainTableHeaders) {
		t.Errorf("jumlah kolom header = %d, want %d", len(rows[0]), len(MainTableHeaders))
	}

	metadata := readZipEntry(t, r, "DatasetMetadata.csv")
	if !strings.Contains(metadata, "Version,6") {
		t.Errorf("metadata tanpa Version 6:\n%s", metadata)
	}

	subjects := readZipEntry(t, r, "LinkTables/Subject.csv")
	if !strings.Contains(subjects, "budi@contoh.id") {
		t.Errorf("Subject.csv tanpa user log:\n%s", subjects)
	}

	// event edit terakhir harus tersimpan sebagai code state
	foundState := false
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "CodeStates/") && strings.HasSuffix(f.Name, "answer.py") {
			foundState = true
		}
	}
	if !foundState {
		t.Error("CodeStates/ tidak berisi answer.py")
	}
}

func TestExportHonorsContext(t *testing.T) {
	db := openTestDB(t)
	svc := NewProgSnapService(db)

	course := courseModel.CourseModel{Name: "Kelas"}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	entry := logModel.LogModel{CourseID: &course.ID, EventType: "Session.Start"}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed log: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf, course.ID, nil); err == nil {
		t.Error("context batal seharusnya menghentikan export")
	}
}
