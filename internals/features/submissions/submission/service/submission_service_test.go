// file: internals/features/submissions/submission/service/submission_service_test.go
package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	logModel "kodingku_backend/internals/features/submissions/log/model"
	reviewModel "kodingku_backend/internals/features/submissions/review/model"
	"kodingku_backend/internals/features/submissions/submission/model"
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
		&assignmentModel.AssignmentModel{},
		&model.SubmissionModel{},
		&logModel.LogModel{},
		&reviewModel.ReviewModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedAssignment(t *testing.T, db *gorm.DB, reviewed bool) *assignmentModel.AssignmentModel {
	t.Helper()
	url := "soal-1"
	assignment := assignmentModel.AssignmentModel{
		Name:         "Soal 1",
		URL:          &url,
		Type:         "blockpy",
		StartingCode: "x = 0",
		Version:      3,
		Reviewed:     reviewed,
	}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return &assignment
}

func TestLoadOrNewCreatesOnce(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubmissionService(db, t.TempDir())
	assignment := seedAssignment(t, db, false)

	first, err := svc.LoadOrNew(assignment, 1, 10, "", nil)
	if err != nil {
		t.Fatalf("LoadOrNew() error = %v", err)
	}
	if first.Code != "x = 0" {
		t.Errorf("submission baru tidak memakai starting code: %q", first.Code)
	}
	if first.AssignmentVersion != 3 {
		t.Errorf("AssignmentVersion = %d, want 3", first.AssignmentVersion)
	}

	// event File.Create answer.py ikut tercatat
	var count int64
	db.Model(&logModel.LogModel{}).
		Where("event_type = ? AND file_path = ?", "File.Create", "answer.py").
		Count(&count)
	if count != 1 {
		t.Errorf("log File.Create = %d, want 1", count)
	}

	// panggilan kedua mengembalikan submission yang sama
	second, err := svc.LoadOrNew(assignment, 1, 10, "", nil)
	if err != nil {
		t.Fatalf("LoadOrNew() kedua error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("submission kedua id=%d, want %d", second.ID, first.ID)
	}
	var total int64
	db.Model(&model.SubmissionModel{}).Count(&total)
	if total != 1 {
		t.Errorf("jumlah submission = %d, want 1", total)
	}
}

func TestLoadOrNewUpdatesEndpoint(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubmissionService(db, t.TempDir())
	assignment := seedAssignment(t, db, false)

	if _, err := svc.LoadOrNew(assignment, 1, 10, "", nil); err != nil {
		t.Fatalf("LoadOrNew() error = %v", err)
	}
	updated, err := svc.LoadOrNew(assignment, 1, 10, "https://lms/outcome/123", nil)
	if err != nil {
		t.Fatalf("LoadOrNew() error = %v", err)
	}
	if updated.Endpoint != "https://lms/outcome/123" {
		t.Errorf("Endpoint = %q", updated.Endpoint)
	}
	reloaded, _ := svc.GetByID(updated.ID)
	if reloaded.Endpoint != "https://lms/outcome/123" {
		t.Errorf("Endpoint tidak tersimpan: %q", reloaded.Endpoint)
	}
}

func TestUpdateSubmissionTransitions(t *testing.T) {
	tests := []struct {
		name        string
		reviewed    bool
		score       int
		correct     bool
		wantStatus  string
		wantGrading string
	}{
		{name: "reviewed menunggu review manual", reviewed: true, score: 100, correct: true,
			wantStatus: model.StatusInProgress, wantGrading: model.GradingNotReady},
		{name: "correct langsung selesai", score: 100, correct: true,
			wantStatus: model.StatusCompleted, wantGrading: model.GradingFullyGraded},
		{name: "belum benar tetap pending", score: 40,
			wantStatus: model.StatusSubmitted, wantGrading: model.GradingPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			svc := NewSubmissionService(db, t.TempDir())
			assignment := seedAssignment(t, db, tt.reviewed)
			submission, err := svc.LoadOrNew(assignment, 1, 10, "", nil)
			if err != nil {
				t.Fatalf("LoadOrNew() error = %v", err)
			}

			changed, err := svc.UpdateSubmission(submission.ID, tt.score, tt.correct)
			if err != nil {
				t.Fatalf("UpdateSubmission() error = %v", err)
			}
			if !changed {
				t.Error("perubahan skor pertama seharusnya changed=true")
			}

			reloaded, _ := svc.GetByID(submission.ID)
			if reloaded.SubmissionStatus != tt.wantStatus {
				t.Errorf("SubmissionStatus = %q, want %q", reloaded.SubmissionStatus, tt.wantStatus)
			}
			if reloaded.GradingStatus != tt.wantGrading {
				t.Errorf("GradingStatus = %q, want %q", reloaded.GradingStatus, tt.wantGrading)
			}

			// nilai sama dikirim ulang: tidak dianggap berubah
			changed, err = svc.UpdateSubmission(submission.ID, tt.score, tt.correct)
			if err != nil {
				t.Fatalf("UpdateSubmission() ulang error = %v", err)
			}
			if changed {
				t.Error("nilai identik seharusnya changed=false")
			}
		})
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubmissionService(db, t.TempDir())
	assignment := seedAssignment(t, db, false)
	submission, err := svc.LoadOrNew(assignment, 1, 10, "", nil)
	if err != nil {
		t.Fatalf("LoadOrNew() error = %v", err)
	}

	ok, err := svc.UpdateSubmissionStatus(submission.ID, "Ngawur")
	if err != nil {
		t.Fatalf("UpdateSubmissionStatus() error = %v", err)
	}
	if ok {
		t.Error("status tidak dikenal diterima")
	}
	ok, err = svc.UpdateGradingStatus(submission.ID, model.GradingPendingManual)
	if err != nil || !ok {
		t.Fatalf("UpdateGradingStatus() = %v, %v", ok, err)
	}
	reloaded, _ := svc.GetByID(submission.ID)
	if reloaded.GradingStatus != model.GradingPendingManual {
		t.Errorf("GradingStatus = %q", reloaded.GradingStatus)
	}
}

func TestFullScore(t *testing.T) {
	db := openTestDB(t)
	svc := NewSubmissionService(db, t.TempDir())

	submission := &model.SubmissionModel{Score: 40}
	if err := db.Create(submission).Error; err != nil {
		t.Fatalf("seed submission: %v", err)
	}

	score, err := svc.FullScore(submission, false)
	if err != nil || score != 0.4 {
		t.Errorf("FullScore() = %v, %v; want 0.4", score, err)
	}

	submission.Correct = true
	score, _ = svc.FullScore(submission, false)
	if score != 1.0 {
		t.Errorf("FullScore(correct) = %v, want 1.0", score)
	}

	// reviewed: skor review ditambahkan ke skor autograder
	reviewScore := 30
	review := reviewModel.ReviewModel{SubmissionID: &submission.ID, Score: &reviewScore}
	if err := db.Create(&review).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}
	score, err = svc.FullScore(submission, true)
	if err != nil || score != 0.7 {
		t.Errorf("FullScore(reviewed) = %v, %v; want 0.7", score, err)
	}
}
