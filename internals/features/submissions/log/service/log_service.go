// file: internals/features/submissions/log/service/log_service.go
package service

import (
	"log"
	"strings"

	"gorm.io/gorm"

	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	"kodingku_backend/internals/features/submissions/log/model"
	userModel "kodingku_backend/internals/features/users/user/model"
	helper "kodingku_backend/internals/helpers"
)

type LogService struct {
	DB *gorm.DB
}

func NewLogService(db *gorm.DB) *LogService {
	return &LogService{DB: db}
}

// New menulis satu event. NUL byte di message dibuang karena Postgres
// menolak \0 di kolom text.
func (s *LogService) New(assignmentID *uint, assignmentVersion int, courseID, subjectID *uint,
	eventType, filePath, category, label, message, clientTimestamp, clientTimezone string) (*model.LogModel, error) {
	entry := model.LogModel{
		AssignmentID:      assignmentID,
		AssignmentVersion: assignmentVersion,
		CourseID:          courseID,
		SubjectID:         subjectID,
		EventType:         eventType,
		FilePath:          filePath,
		Category:          category,
		Label:             label,
		Message:           strings.ReplaceAll(message, "\x00", ""),
		ClientTimestamp:   clientTimestamp,
		ClientTimezone:    clientTimezone,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		return nil, err
	}
	log.Printf("[EVENT] %s %s assignment=%v subject=%v", entry.EventType, entry.FilePath,
		entry.AssignmentID, entry.SubjectID)
	return &entry, nil
}

// NewSilent: sama seperti New tapi tanpa mirror ke log proses; dipakai
// dari dalam transaksi milik service lain.
func (s *LogService) NewSilent(assignmentID *uint, assignmentVersion int, courseID, subjectID *uint,
	eventType, filePath, category, label, message, clientTimestamp, clientTimezone string) error {
	entry := model.LogModel{
		AssignmentID:      assignmentID,
		AssignmentVersion: assignmentVersion,
		CourseID:          courseID,
		SubjectID:         subjectID,
		EventType:         eventType,
		FilePath:          filePath,
		Category:          category,
		Label:             label,
		Message:           strings.ReplaceAll(message, "\x00", ""),
		ClientTimestamp:   clientTimestamp,
		ClientTimezone:    clientTimezone,
	}
	return s.DB.Create(&entry).Error
}

// GetHistory: event satu (course, assignment, user), terbaru dulu.
func (s *LogService) GetHistory(courseID, assignmentID, userID uint, paging *helper.Paging) ([]model.LogModel, error) {
	query := s.DB.Where("course_id = ? AND assignment_id = ? AND subject_id = ?",
		courseID, assignmentID, userID).
		Order("date_created DESC")
	if paging != nil {
		query = query.Offset(paging.Offset).Limit(paging.Limit)
	}
	var logs []model.LogModel
	err := query.Find(&logs).Error
	return logs, err
}

func (s *LogService) GetLogsForCourse(courseID uint) ([]model.LogModel, error) {
	var logs []model.LogModel
	err := s.DB.Where("course_id = ?", courseID).Find(&logs).Error
	return logs, err
}

// GetUsersForCourse: user yang pernah menghasilkan event di course.
func (s *LogService) GetUsersForCourse(courseID uint) ([]userModel.UserModel, error) {
	var users []userModel.UserModel
	err := s.DB.Distinct("users.*").
		Joins("JOIN logs ON logs.subject_id = users.id").
		Where("logs.course_id = ?", courseID).
		Find(&users).Error
	return users, err
}

func (s *LogService) GetAssignmentsForCourse(courseID uint) ([]assignmentModel.AssignmentModel, error) {
	var assignments []assignmentModel.AssignmentModel
	err := s.DB.Distinct("assignments.*").
		Joins("JOIN logs ON logs.assignment_id = assignments.id").
		Where("logs.course_id = ?", courseID).
		Find(&assignments).Error
	return assignments, err
}
