// file: internals/features/assignments/tag/service/assignment_tag_service.go
package service

import (
	"gorm.io/gorm"

	"kodingku_backend/internals/features/assignments/tag/model"
)

type AssignmentTagService struct {
	DB *gorm.DB
}

func NewAssignmentTagService(db *gorm.DB) *AssignmentTagService {
	return &AssignmentTagService{DB: db}
}

func (s *AssignmentTagService) New(ownerID, courseID uint, name, kind, description, level string) (*model.AssignmentTagModel, error) {
	tag := model.AssignmentTagModel{
		Name:        name,
		OwnerID:     &ownerID,
		CourseID:    &courseID,
		Kind:        kind,
		Description: description,
		Level:       level,
	}
	if err := s.DB.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *AssignmentTagService) Remove(tagID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_tag_id = ?", tagID).
			Delete(&model.AssignmentTagMembershipModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.AssignmentTagModel{}, tagID).Error
	})
}

func (s *AssignmentTagService) ByCourse(courseID uint) ([]model.AssignmentTagModel, error) {
	var tags []model.AssignmentTagModel
	err := s.DB.Where("course_id = ?", courseID).Order("name").Find(&tags).Error
	return tags, err
}

func (s *AssignmentTagService) GetAll() ([]model.AssignmentTagModel, error) {
	var tags []model.AssignmentTagModel
	err := s.DB.Order("course_id, kind, level, name").Find(&tags).Error
	return tags, err
}

// ByAssignment lewat tabel join many-to-many.
func (s *AssignmentTagService) ByAssignment(assignmentID uint) ([]model.AssignmentTagModel, error) {
	var tags []model.AssignmentTagModel
	err := s.DB.
		Joins("JOIN assignment_tag_membership m ON m.assignment_tag_id = assignment_tags.id").
		Where("m.assignment_id = ?", assignmentID).
		Order("assignment_tags.name").
		Find(&tags).Error
	return tags, err
}

func (s *AssignmentTagService) AttachTag(assignmentID, tagID uint) error {
	var count int64
	if err := s.DB.Model(&model.AssignmentTagMembershipModel{}).
		Where("assignment_id = ? AND assignment_tag_id = ?", assignmentID, tagID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.DB.Create(&model.AssignmentTagMembershipModel{
		AssignmentID:    assignmentID,
		AssignmentTagID: tagID,
	}).Error
}

func (s *AssignmentTagService) DetachTag(assignmentID, tagID uint) error {
	return s.DB.Where("assignment_id = ? AND assignment_tag_id = ?", assignmentID, tagID).
		Delete(&model.AssignmentTagMembershipModel{}).Error
}
