// file: internals/features/submissions/review/service/review_service.go
package service

import (
	"errors"

	"gorm.io/gorm"

	"kodingku_backend/internals/features/submissions/review/model"
)

type ReviewService struct {
	DB *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db}
}

// Field yang boleh diubah lewat Edit.
type ReviewEdit struct {
	Comment       *string `json:"comment"`
	Location      *string `json:"location"`
	Score         *int    `json:"score"`
	Generic       *bool   `json:"generic"`
	TagID         *uint   `json:"tag_id"`
	ForkedID      *uint   `json:"forked_id"`
	ForkedVersion *int    `json:"forked_version"`
}

func (s *ReviewService) New(review *model.ReviewModel) error {
	review.Version = 0
	return s.DB.Create(review).Error
}

// Edit menerapkan field yang hadir; version hanya naik kalau ada yang
// benar-benar berubah.
func (s *ReviewService) Edit(reviewID uint, edit ReviewEdit) (*model.ReviewModel, error) {
	var review model.ReviewModel
	if err := s.DB.First(&review, reviewID).Error; err != nil {
		return nil, err
	}

	changed := false
	if edit.Comment != nil && *edit.Comment != review.Comment {
		review.Comment = *edit.Comment
		changed = true
	}
	if edit.Location != nil && *edit.Location != review.Location {
		review.Location = *edit.Location
		changed = true
	}
	if edit.Score != nil && (review.Score == nil || *review.Score != *edit.Score) {
		review.Score = edit.Score
		changed = true
	}
	if edit.Generic != nil && *edit.Generic != review.Generic {
		review.Generic = *edit.Generic
		changed = true
	}
	if edit.TagID != nil && (review.TagID == nil || *review.TagID != *edit.TagID) {
		review.TagID = edit.TagID
		changed = true
	}
	if edit.ForkedID != nil && (review.ForkedID == nil || *review.ForkedID != *edit.ForkedID) {
		review.ForkedID = edit.ForkedID
		changed = true
	}
	if edit.ForkedVersion != nil && (review.ForkedVersion == nil || *review.ForkedVersion != *edit.ForkedVersion) {
		review.ForkedVersion = edit.ForkedVersion
		changed = true
	}

	if changed {
		review.Version++
	}
	if err := s.DB.Save(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) Delete(reviewID uint) error {
	return s.DB.Delete(&model.ReviewModel{}, reviewID).Error
}

func (s *ReviewService) ForSubmission(submissionID uint) ([]model.ReviewModel, error) {
	var reviews []model.ReviewModel
	err := s.DB.Where("submission_id = ?", submissionID).Find(&reviews).Error
	return reviews, err
}

func (s *ReviewService) GetGenericReviews() ([]model.ReviewModel, error) {
	var reviews []model.ReviewModel
	err := s.DB.Where("generic = ?", true).Find(&reviews).Error
	return reviews, err
}

// GetActualScore: skor efektif review. Kalau skornya kosong, warisan
// diambil dari rantai fork; rantai putus atau melingkar bernilai 0.
func (s *ReviewService) GetActualScore(review *model.ReviewModel) (int, error) {
	visited := map[uint]bool{review.ID: true}
	current := review
	for {
		if current.Score != nil {
			return *current.Score, nil
		}
		if current.ForkedID == nil {
			return 0, nil
		}
		if visited[*current.ForkedID] {
			// rantai fork melingkar
			return 0, nil
		}
		var parent model.ReviewModel
		err := s.DB.First(&parent, *current.ForkedID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		visited[parent.ID] = true
		current = &parent
	}
}

// GetReviewedScores: total skor efektif semua review satu submission.
func (s *ReviewService) GetReviewedScores(submissionID uint) (int, error) {
	reviews, err := s.ForSubmission(submissionID)
	if err != nil {
		return 0, err
	}
	total := 0
	for i := range reviews {
		score, err := s.GetActualScore(&reviews[i])
		if err != nil {
			return 0, err
		}
		total += score
	}
	return total, nil
}
