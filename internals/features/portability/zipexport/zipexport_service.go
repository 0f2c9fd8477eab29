// file: internals/features/portability/zipexport/zipexport_service.go
//
// Export zip "human-readable": satu folder per assignment, satu subfolder
// per murid, berisi answer.py, _grade.json, dan extra files-nya.
package zipexport

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	"kodingku_backend/internals/features/portability/schema"
	submissionModel "kodingku_backend/internals/features/submissions/submission/model"
	userModel "kodingku_backend/internals/features/users/user/model"
	helper "kodingku_backend/internals/helpers"
)

type ZipExportService struct {
	DB *gorm.DB
}

func NewZipExportService(db *gorm.DB) *ZipExportService {
	return &ZipExportService{DB: db}
}

func (s *ZipExportService) emailLookup() schema.EmailLookup {
	return func(userID uint) (string, bool) {
		var user userModel.UserModel
		if err := s.DB.First(&user, userID).Error; err != nil {
			return "", false
		}
		return user.Email, true
	}
}

// ExportZip merakit arsip dari entity yang sudah dimuat caller.
// Submission yang assignment/user-nya tidak ikut diberikan dilewati.
func (s *ZipExportService) ExportZip(assignments []assignmentModel.AssignmentModel,
	submissions []submissionModel.SubmissionModel,
	users []userModel.UserModel) ([]byte, error) {

	lookup := s.emailLookup()
	dumped := map[string]string{}

	assignmentPaths := map[uint]string{}
	for i := range assignments {
		assignment := &assignments[i]
		assignmentPaths[assignment.ID] = assignment.GetFilename("")
		encoded, err := sonic.MarshalString(assignment.EncodeJSON(
			schema.FetchOwner(assignment.OwnerID), lookup, nil, nil))
		if err != nil {
			return nil, err
		}
		dumped[assignment.GetFilename(".md")] = encoded
	}

	userPaths := map[uint]string{}
	userNames := make([]string, 0, len(users))
	for i := range users {
		user := &users[i]
		userPaths[user.ID] = helper.SafeFilename(user.Name())
		userNames = append(userNames, user.Name())
	}
	dumped["users.txt"] = joinLines(userNames)

	for i := range submissions {
		submission := &submissions[i]
		if submission.AssignmentID == nil || submission.UserID == nil {
			continue
		}
		assignmentPath, okAssignment := assignmentPaths[*submission.AssignmentID]
		userPath, okUser := userPaths[*submission.UserID]
		if !okAssignment || !okUser {
			continue
		}
		files, err := submission.EncodeHuman()
		if err != nil {
			return nil, err
		}
		for filename, contents := range files {
			dumped[fmt.Sprintf("%s/%s/%s", assignmentPath, userPath, filename)] = contents
		}
	}

	var buffer bytes.Buffer
	zipFile := zip.NewWriter(&buffer)
	for name, contents := range dumped {
		entry, err := zipFile.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write([]byte(contents)); err != nil {
			return nil, err
		}
	}
	if err := zipFile.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// ExportCourseZip memuat sendiri assignment, submission, dan murid satu
// course lalu merakit arsipnya.
func (s *ZipExportService) ExportCourseZip(courseID uint) ([]byte, error) {
	var assignments []assignmentModel.AssignmentModel
	if err := s.DB.Where("course_id = ?", courseID).Find(&assignments).Error; err != nil {
		return nil, err
	}
	var submissions []submissionModel.SubmissionModel
	if err := s.DB.Where("course_id = ?", courseID).Find(&submissions).Error; err != nil {
		return nil, err
	}
	var users []userModel.UserModel
	if err := s.DB.Distinct("users.*").
		Joins("JOIN roles ON roles.user_id = users.id").
		Where("roles.course_id = ?", courseID).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return s.ExportZip(assignments, submissions, users)
}

func joinLines(lines []string) string {
	var buffer bytes.Buffer
	for i, line := range lines {
		if i > 0 {
			buffer.WriteByte('\n')
		}
		buffer.WriteString(line)
	}
	return buffer.String()
}
