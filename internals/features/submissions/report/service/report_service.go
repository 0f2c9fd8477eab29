// file: internals/features/submissions/report/service/report_service.go
package service

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bytedance/sonic"

	"kodingku_backend/internals/features/submissions/report/model"
	submissionModel "kodingku_backend/internals/features/submissions/submission/model"
	helper "kodingku_backend/internals/helpers"
)

type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

func (s *ReportService) GetByID(id uint) (*model.ReportModel, error) {
	var report model.ReportModel
	if err := s.DB.First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportService) ByCourse(courseID uint) ([]model.ReportModel, error) {
	var reports []model.ReportModel
	err := s.DB.Where("course_id = ?", courseID).
		Order("date_created DESC").
		Find(&reports).Error
	return reports, err
}

// BuildScoreReport merekap skor submission per assignment di satu course
// dan menyimpannya sebagai report baru.
func (s *ReportService) BuildScoreReport(courseID, ownerID uint, title string) (*model.ReportModel, error) {
	type row struct {
		AssignmentID uint    `json:"assignment_id"`
		Submissions  int     `json:"submissions"`
		Completed    int     `json:"completed"`
		AverageScore float64 `json:"average_score"`
	}
	var rows []row
	err := s.DB.Model(&submissionModel.SubmissionModel{}).
		Select("assignment_id",
			"COUNT(*) AS submissions",
			"SUM(CASE WHEN correct THEN 1 ELSE 0 END) AS completed",
			"AVG(score) AS average_score").
		Where("course_id = ? AND assignment_id IS NOT NULL", courseID).
		Group("assignment_id").
		Order("assignment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	content, err := sonic.Marshal(map[string]any{
		"assignments":  rows,
		"generated_at": helper.PrettyTime(time.Now()),
	})
	if err != nil {
		return nil, err
	}
	report := model.ReportModel{
		Title:    title,
		Content:  datatypes.JSON(content),
		CourseID: &courseID,
		OwnerID:  &ownerID,
	}
	if err := s.DB.Create(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// ---- Grader assignment ----

func (s *ReportService) AssignGrader(courseID, studentID, graderID uint) error {
	var count int64
	if err := s.DB.Model(&model.GraderModel{}).
		Where("course_id = ? AND student_id = ? AND grader_id = ?", courseID, studentID, graderID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.DB.Create(&model.GraderModel{
		CourseID:  &courseID,
		StudentID: &studentID,
		GraderID:  &graderID,
	}).Error
}

func (s *ReportService) StudentsForGrader(courseID, graderID uint) ([]uint, error) {
	var ids []uint
	err := s.DB.Model(&model.GraderModel{}).
		Where("course_id = ? AND grader_id = ?", courseID, graderID).
		Pluck("student_id", &ids).Error
	return ids, err
}
