// file: internals/features/assignments/sample/service/sample_submission_service.go
package service

import (
	"gorm.io/gorm"

	"kodingku_backend/internals/features/assignments/sample/model"
)

type SampleSubmissionService struct {
	DB *gorm.DB
}

func NewSampleSubmissionService(db *gorm.DB) *SampleSubmissionService {
	return &SampleSubmissionService{DB: db}
}

func (s *SampleSubmissionService) New(ownerID, assignmentID uint, name string) (*model.SampleSubmissionModel, error) {
	sample := model.SampleSubmissionModel{
		Name:         name,
		OwnerID:      &ownerID,
		AssignmentID: &assignmentID,
	}
	if err := s.DB.Create(&sample).Error; err != nil {
		return nil, err
	}
	return &sample, nil
}

func (s *SampleSubmissionService) GetByID(id uint) (*model.SampleSubmissionModel, error) {
	var sample model.SampleSubmissionModel
	if err := s.DB.First(&sample, id).Error; err != nil {
		return nil, err
	}
	return &sample, nil
}

func (s *SampleSubmissionService) Remove(sampleID uint) error {
	return s.DB.Delete(&model.SampleSubmissionModel{}, sampleID).Error
}

func (s *SampleSubmissionService) ByAssignment(assignmentID uint) ([]model.SampleSubmissionModel, error) {
	var samples []model.SampleSubmissionModel
	err := s.DB.Where("assignment_id = ?", assignmentID).
		Order("name").
		Find(&samples).Error
	return samples, err
}

func (s *SampleSubmissionService) Save(sample *model.SampleSubmissionModel) error {
	return s.DB.Save(sample).Error
}
