// file: internals/features/submissions/submission/service/submission_service.go
package service

import (
	"errors"

	"gorm.io/gorm"

	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	"kodingku_backend/internals/features/portability/schema"
	logService "kodingku_backend/internals/features/submissions/log/service"
	reviewService "kodingku_backend/internals/features/submissions/review/service"
	"kodingku_backend/internals/features/submissions/submission/model"
	userModel "kodingku_backend/internals/features/users/user/model"
	helper "kodingku_backend/internals/helpers"
)

type SubmissionService struct {
	DB      *gorm.DB
	Logs    *logService.LogService
	Reviews *reviewService.ReviewService
	// Direktori untuk gambar block snapshot.
	UploadsDir string
}

func NewSubmissionService(db *gorm.DB, uploadsDir string) *SubmissionService {
	return &SubmissionService{
		DB:         db,
		Logs:       logService.NewLogService(db),
		Reviews:    reviewService.NewReviewService(db),
		UploadsDir: uploadsDir,
	}
}

func (s *SubmissionService) GetByID(id uint) (*model.SubmissionModel, error) {
	var submission model.SubmissionModel
	if err := s.DB.First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// GetSubmission cari submission satu (assignment, course, user).
// Return nil (tanpa error) kalau belum ada.
func (s *SubmissionService) GetSubmission(assignmentID, userID, courseID uint) (*model.SubmissionModel, error) {
	var submission model.SubmissionModel
	err := s.DB.Where("assignment_id = ? AND course_id = ? AND user_id = ?",
		assignmentID, courseID, userID).First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// FromAssignment membuat submission baru: code diisi starting_code,
// extra_files diisi extra_starting_files. Pembuatan row dan event
// File.Create answer.py jadi satu transaksi.
func (s *SubmissionService) FromAssignment(assignment *assignmentModel.AssignmentModel,
	userID, courseID uint, assignmentGroupID *uint) (*model.SubmissionModel, error) {
	var submission model.SubmissionModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		assignmentID := assignment.ID
		uid := userID
		cid := courseID
		submission = model.SubmissionModel{
			AssignmentID:      &assignmentID,
			AssignmentGroupID: assignmentGroupID,
			CourseID:          &cid,
			UserID:            &uid,
			Code:              assignment.StartingCode,
			ExtraFiles:        assignment.ExtraStartingFiles,
			AssignmentVersion: assignment.Version,
		}
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		return logService.NewLogService(tx).NewSilent(&assignmentID, assignment.Version,
			&cid, &uid, "File.Create", "answer.py", "", "", assignment.StartingCode, "", "")
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// LoadOrNew ambil submission user untuk assignment tsb, buat baru kalau
// belum ada. newSubmissionURL (kalau terisi) memperbarui endpoint LTI.
func (s *SubmissionService) LoadOrNew(assignment *assignmentModel.AssignmentModel,
	userID, courseID uint, newSubmissionURL string, assignmentGroupID *uint) (*model.SubmissionModel, error) {
	submission, err := s.GetSubmission(assignment.ID, userID, courseID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		submission, err = s.FromAssignment(assignment, userID, courseID, assignmentGroupID)
		if err != nil {
			return nil, err
		}
	}
	if newSubmissionURL != "" {
		submission.Endpoint = newSubmissionURL
		if err := s.DB.Save(submission).Error; err != nil {
			return nil, err
		}
	}
	return submission, nil
}

// SaveCode menyimpan "file" murid; assignment_version ikut disamakan.
func (s *SubmissionService) SaveCode(submissionID uint, filename, code string) (*model.SubmissionModel, error) {
	submission, err := s.GetByID(submissionID)
	if err != nil {
		return nil, err
	}
	assignmentVersion := submission.AssignmentVersion
	if submission.AssignmentID != nil {
		var assignment assignmentModel.AssignmentModel
		if err := s.DB.First(&assignment, *submission.AssignmentID).Error; err == nil {
			assignmentVersion = assignment.Version
		}
	}
	submission.SaveCode(filename, code, assignmentVersion)
	if err := s.DB.Save(submission).Error; err != nil {
		return nil, err
	}
	return submission, nil
}

// SetSubmission: penetapan nilai langsung (grader), selalu FullyGraded.
func (s *SubmissionService) SetSubmission(submissionID uint, score int, correct bool) (*model.SubmissionModel, error) {
	submission, err := s.GetByID(submissionID)
	if err != nil {
		return nil, err
	}
	submission.Score = score
	submission.Correct = correct
	submission.GradingStatus = model.GradingFullyGraded
	if err := s.DB.Save(submission).Error; err != nil {
		return nil, err
	}
	return submission, nil
}

// UpdateSubmission: nilai baru dari autograder. Transisi status:
// assignment reviewed → inProgress/NotReady (tunggu review manual);
// correct → Completed/FullyGraded; selain itu Submitted/Pending.
// Return true kalau skor atau correct berubah.
func (s *SubmissionService) UpdateSubmission(submissionID uint, score int, correct bool) (bool, error) {
	submission, err := s.GetByID(submissionID)
	if err != nil {
		return false, err
	}
	wasChanged := submission.Score != score || submission.Correct != correct
	submission.Score = score
	submission.Correct = correct

	reviewed := false
	if submission.AssignmentID != nil {
		var assignment assignmentModel.AssignmentModel
		if err := s.DB.First(&assignment, *submission.AssignmentID).Error; err != nil {
			return false, err
		}
		reviewed = assignment.Reviewed
	}

	switch {
	case reviewed:
		submission.SubmissionStatus = model.StatusInProgress
		submission.GradingStatus = model.GradingNotReady
	case correct:
		submission.SubmissionStatus = model.StatusCompleted
		submission.GradingStatus = model.GradingFullyGraded
	default:
		submission.SubmissionStatus = model.StatusSubmitted
		submission.GradingStatus = model.GradingPending
	}

	if err := s.DB.Save(submission).Error; err != nil {
		return false, err
	}
	return wasChanged, nil
}

// UpdateSubmissionStatus: status tak dikenal diabaikan (return false).
func (s *SubmissionService) UpdateSubmissionStatus(submissionID uint, status string) (bool, error) {
	submission, err := s.GetByID(submissionID)
	if err != nil {
		return false, err
	}
	if !submission.SetSubmissionStatus(status) {
		return false, nil
	}
	return true, s.DB.Save(submission).Error
}

func (s *SubmissionService) UpdateGradingStatus(submissionID uint, status string) (bool, error) {
	submission, err := s.GetByID(submissionID)
	if err != nil {
		return false, err
	}
	if !submission.SetGradingStatus(status) {
		return false, nil
	}
	return true, s.DB.Save(submission).Error
}

// SaveCorrect: tandai benar dari jalur LMS; buat row kalau belum ada.
func (s *SubmissionService) SaveCorrect(userID, assignmentID, courseID uint) (*model.SubmissionModel, error) {
	submission, err := s.GetSubmission(assignmentID, userID, courseID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		aid, uid, cid := assignmentID, userID, courseID
		submission = &model.SubmissionModel{
			AssignmentID: &aid,
			UserID:       &uid,
			CourseID:     &cid,
			Correct:      true,
		}
		return submission, s.DB.Create(submission).Error
	}
	submission.Correct = true
	return submission, s.DB.Save(submission).Error
}

// FullScore: skor akhir dari skala 0..1. Assignment reviewed menambahkan
// total skor review ke skor autograder.
func (s *SubmissionService) FullScore(submission *model.SubmissionModel, assignmentReviewed bool) (float64, error) {
	if assignmentReviewed {
		reviewScore, err := s.Reviews.GetReviewedScores(submission.ID)
		if err != nil {
			return 0, err
		}
		return float64(submission.Score+reviewScore) / 100.0, nil
	}
	if submission.Correct {
		return 1.0, nil
	}
	return float64(submission.Score) / 100.0, nil
}

// FullRow: submission + user + assignment sekaligus (untuk tampilan grading).
type FullRow struct {
	Submission model.SubmissionModel
	User       userModel.UserModel
	Assignment assignmentModel.AssignmentModel
}

func (s *SubmissionService) fullRows(query *gorm.DB) ([]FullRow, error) {
	var submissions []model.SubmissionModel
	if err := query.Find(&submissions).Error; err != nil {
		return nil, err
	}
	rows := make([]FullRow, 0, len(submissions))
	for _, submission := range submissions {
		row := FullRow{Submission: submission}
		if submission.UserID != nil {
			if err := s.DB.First(&row.User, *submission.UserID).Error; err != nil &&
				!errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
		if submission.AssignmentID != nil {
			if err := s.DB.First(&row.Assignment, *submission.AssignmentID).Error; err != nil &&
				!errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *SubmissionService) FullByID(submissionID uint) (*FullRow, error) {
	rows, err := s.fullRows(s.DB.Where("id = ?", submissionID))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *SubmissionService) ByAssignment(assignmentID, courseID uint) ([]FullRow, error) {
	return s.fullRows(s.DB.Where("assignment_id = ? AND course_id = ?", assignmentID, courseID))
}

func (s *SubmissionService) ByStudent(userID, courseID uint) ([]FullRow, error) {
	return s.fullRows(s.DB.Where("user_id = ? AND course_id = ?", userID, courseID))
}

// ByPendingReview: submission course yang menunggu review manual, untuk
// assignment yang ditandai reviewed. Urut nama assignment lalu nama murid.
func (s *SubmissionService) ByPendingReview(courseID uint) ([]FullRow, error) {
	var submissions []model.SubmissionModel
	err := s.DB.Model(&model.SubmissionModel{}).
		Select("submissions.*").
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Joins("JOIN users ON users.id = submissions.user_id").
		Where("submissions.course_id = ?", courseID).
		Where("submissions.submission_status IN ?", []string{model.StatusSubmitted, model.StatusCompleted}).
		Where("submissions.grading_status IN ?", []string{model.GradingPendingManual, model.GradingNotReady}).
		Where("assignments.reviewed = ?", true).
		Order("assignments.name ASC, users.last_name ASC, users.first_name ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	rows := make([]FullRow, 0, len(submissions))
	for _, submission := range submissions {
		row := FullRow{Submission: submission}
		if submission.UserID != nil {
			if err := s.DB.First(&row.User, *submission.UserID).Error; err != nil {
				return nil, err
			}
		}
		if submission.AssignmentID != nil {
			if err := s.DB.First(&row.Assignment, *submission.AssignmentID).Error; err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SaveBlockImage simpan snapshot blok dari data-URI; data kosong berarti
// hapus gambar yang ada. Return URL publik gambar (atau "").
func (s *SubmissionService) SaveBlockImage(submissionID uint, dataURI string) (string, error) {
	return helper.SaveImageDataURI(s.UploadsDir, "submission_blocks", submissionID, dataURI)
}

func (s *SubmissionService) EmailLookup() schema.EmailLookup {
	return func(userID uint) (string, bool) {
		var user userModel.UserModel
		if err := s.DB.First(&user, userID).Error; err != nil {
			return "", false
		}
		return user.Email, true
	}
}
