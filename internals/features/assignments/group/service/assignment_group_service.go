// file: internals/features/assignments/group/service/assignment_group_service.go
package service

import (
	"errors"

	"gorm.io/gorm"

	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	"kodingku_backend/internals/features/assignments/group/model"
)

type AssignmentGroupService struct {
	DB *gorm.DB
}

func NewAssignmentGroupService(db *gorm.DB) *AssignmentGroupService {
	return &AssignmentGroupService{DB: db}
}

func (s *AssignmentGroupService) GetByID(id uint) (*model.AssignmentGroupModel, error) {
	var group model.AssignmentGroupModel
	if err := s.DB.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *AssignmentGroupService) ByURL(url string) (*model.AssignmentGroupModel, error) {
	var group model.AssignmentGroupModel
	err := s.DB.Where("url = ?", url).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *AssignmentGroupService) ByCourse(courseID uint) ([]model.AssignmentGroupModel, error) {
	var groups []model.AssignmentGroupModel
	err := s.DB.Where("course_id = ?", courseID).Order("name").Find(&groups).Error
	return groups, err
}

// New menaruh group di posisi paling akhir course-nya.
// Kalau course belum punya group (atau max position 0), mulai dari 1.
func (s *AssignmentGroupService) New(ownerID, courseID uint, name string) (*model.AssignmentGroupModel, error) {
	if name == "" {
		name = "Untitled Group"
	}
	var group model.AssignmentGroupModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&model.AssignmentGroupModel{}).
			Where("course_id = ?", courseID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		position := 1
		if last > 0 {
			position = last + 1
		}
		group = model.AssignmentGroupModel{
			Name:     name,
			OwnerID:  &ownerID,
			CourseID: &courseID,
			Position: position,
		}
		return tx.Create(&group).Error
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// Remove menghapus group beserta membership-nya, lalu merapatkan posisi
// group lain di course yang sama. Satu transaksi.
func (s *AssignmentGroupService) Remove(groupID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var group model.AssignmentGroupModel
		if err := tx.First(&group, groupID).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.AssignmentGroupModel{}).
			Where("course_id = ? AND position > ?", group.CourseID, group.Position).
			Update("position", gorm.Expr("position - 1")).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.AssignmentGroupModel{}, groupID).Error; err != nil {
			return err
		}
		return tx.Where("assignment_group_id = ?", groupID).
			Delete(&model.AssignmentGroupMembershipModel{}).Error
	})
}

func (s *AssignmentGroupService) IsInCourse(groupID, courseID uint) (bool, error) {
	group, err := s.GetByID(groupID)
	if err != nil {
		return false, err
	}
	return group.CourseID != nil && *group.CourseID == courseID, nil
}

// GetAssignments: assignment anggota group, urut nama lalu posisi membership.
func (s *AssignmentGroupService) GetAssignments(groupID uint) ([]assignmentModel.AssignmentModel, error) {
	var assignments []assignmentModel.AssignmentModel
	err := s.DB.
		Joins("JOIN assignment_group_memberships m ON m.assignment_id = assignments.id").
		Where("m.assignment_group_id = ?", groupID).
		Order("assignments.name, m.position").
		Find(&assignments).Error
	return assignments, err
}

func (s *AssignmentGroupService) GetMemberships(groupID uint) ([]model.AssignmentGroupMembershipModel, error) {
	var memberships []model.AssignmentGroupMembershipModel
	err := s.DB.Where("assignment_group_id = ?", groupID).
		Order("position, id").
		Find(&memberships).Error
	return memberships, err
}

// MembershipsByCourse: semua membership dari group di course, urut stabil.
func (s *AssignmentGroupService) MembershipsByCourse(courseID uint) ([]model.AssignmentGroupMembershipModel, error) {
	var groupIDs []uint
	if err := s.DB.Model(&model.AssignmentGroupModel{}).
		Where("course_id = ?", courseID).
		Pluck("id", &groupIDs).Error; err != nil {
		return nil, err
	}
	if len(groupIDs) == 0 {
		return []model.AssignmentGroupMembershipModel{}, nil
	}
	var memberships []model.AssignmentGroupMembershipModel
	err := s.DB.Where("assignment_group_id IN ?", groupIDs).
		Order("assignment_group_id, assignment_id").
		Find(&memberships).Error
	return memberships, err
}

func (s *AssignmentGroupService) GetUngroupedAssignments(courseID uint) ([]assignmentModel.AssignmentModel, error) {
	var assignments []assignmentModel.AssignmentModel
	err := s.DB.
		Joins("LEFT JOIN assignment_group_memberships m ON m.assignment_id = assignments.id").
		Where("assignments.course_id = ? AND m.assignment_id IS NULL", courseID).
		Find(&assignments).Error
	return assignments, err
}

// MoveAssignment memindahkan assignment ke group lain: membership lamanya
// dihapus, lalu dibuat yang baru (kecuali newGroupID == -1, yang berarti
// keluarkan dari semua group). Satu transaksi.
func (s *AssignmentGroupService) MoveAssignment(assignmentID uint, newGroupID int) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", assignmentID).
			Delete(&model.AssignmentGroupMembershipModel{}).Error; err != nil {
			return err
		}
		if newGroupID == -1 {
			return nil
		}
		return tx.Create(&model.AssignmentGroupMembershipModel{
			AssignmentGroupID: uint(newGroupID),
			AssignmentID:      assignmentID,
			Position:          0,
		}).Error
	})
}
