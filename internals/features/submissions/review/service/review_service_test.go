// file: internals/features/submissions/review/service/review_service_test.go
package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kodingku_backend/internals/features/submissions/review/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("buka sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.ReviewModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func intPtr(n int) *int { return &n }

func TestGetActualScoreForkChain(t *testing.T) {
	db := openTestDB(t)
	svc := NewReviewService(db)

	// kakek punya skor, anak dan cucu mewarisi lewat rantai fork
	grandparent := model.ReviewModel{Score: intPtr(25), Generic: true}
	if err := svc.New(&grandparent); err != nil {
		t.Fatalf("seed: %v", err)
	}
	parent := model.ReviewModel{ForkedID: &grandparent.ID}
	if err := svc.New(&parent); err != nil {
		t.Fatalf("seed: %v", err)
	}
	child := model.ReviewModel{ForkedID: &parent.ID}
	if err := svc.New(&child); err != nil {
		t.Fatalf("seed: %v", err)
	}

	score, err := svc.GetActualScore(&child)
	if err != nil {
		t.Fatalf("GetActualScore() error = %v", err)
	}
	if score != 25 {
		t.Errorf("skor warisan = %d, want 25", score)
	}

	// skor sendiri menang atas warisan
	child.Score = intPtr(80)
	score, _ = svc.GetActualScore(&child)
	if score != 80 {
		t.Errorf("skor sendiri = %d, want 80", score)
	}
}

func TestGetActualScoreBrokenChain(t *testing.T) {
	db := openTestDB(t)
	svc := NewReviewService(db)

	// fork menunjuk id yang tidak ada
	missing := uint(9999)
	review := model.ReviewModel{ForkedID: &missing}
	if err := svc.New(&review); err != nil {
		t.Fatalf("seed: %v", err)
	}
	score, err := svc.GetActualScore(&review)
	if err != nil || score != 0 {
		t.Errorf("rantai putus = %d, %v; want 0, nil", score, err)
	}

	// ujung rantai tanpa skor
	terminal := model.ReviewModel{}
	if err := svc.New(&terminal); err != nil {
		t.Fatalf("seed: %v", err)
	}
	leaf := model.ReviewModel{ForkedID: &terminal.ID}
	if err := svc.New(&leaf); err != nil {
		t.Fatalf("seed: %v", err)
	}
	score, _ = svc.GetActualScore(&leaf)
	if score != 0 {
		t.Errorf("ujung tanpa skor = %d, want 0", score)
	}
}

func TestGetActualScoreCycle(t *testing.T) {
	db := openTestDB(t)
	svc := NewReviewService(db)

	a := model.ReviewModel{}
	if err := svc.New(&a); err != nil {
		t.Fatalf("seed: %v", err)
	}
	b := model.ReviewModel{ForkedID: &a.ID}
	if err := svc.New(&b); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// tutup lingkaran a -> b -> a
	if err := db.Model(&model.ReviewModel{}).Where("id = ?", a.ID).
		Update("forked_id", b.ID).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	var reloaded model.ReviewModel
	if err := db.First(&reloaded, b.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	score, err := svc.GetActualScore(&reloaded)
	if err != nil {
		t.Fatalf("GetActualScore() error = %v", err)
	}
	if score != 0 {
		t.Errorf("rantai melingkar = %d, want 0", score)
	}
}

func TestEditOnlyBumpsVersionOnChange(t *testing.T) {
	db := openTestDB(t)
	svc := NewReviewService(db)

	review := model.ReviewModel{Comment: "bagus"}
	if err := svc.New(&review); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if review.Version != 0 {
		t.Errorf("version awal = %d", review.Version)
	}

	sama := "bagus"
	updated, err := svc.Edit(review.ID, ReviewEdit{Comment: &sama})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if updated.Version != 0 {
		t.Errorf("komentar identik tapi version = %d", updated.Version)
	}

	beda := "kurang rapi"
	updated, err = svc.Edit(review.ID, ReviewEdit{Comment: &beda})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if updated.Version != 1 {
		t.Errorf("version = %d, want 1", updated.Version)
	}
	if updated.Comment != "kurang rapi" {
		t.Errorf("Comment = %q", updated.Comment)
	}

	total, err := svc.GetReviewedScores(9876)
	if err != nil || total != 0 {
		t.Errorf("GetReviewedScores(kosong) = %d, %v", total, err)
	}
}
