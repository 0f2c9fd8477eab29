// file: internals/features/assignments/assignment/service/assignment_service.go
package service

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kodingku_backend/internals/features/assignments/assignment/model"
	groupModel "kodingku_backend/internals/features/assignments/group/model"
	sampleModel "kodingku_backend/internals/features/assignments/sample/model"
	tagModel "kodingku_backend/internals/features/assignments/tag/model"
	"kodingku_backend/internals/features/portability/schema"
	userModel "kodingku_backend/internals/features/users/user/model"
)

type AssignmentService struct {
	DB *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{DB: db}
}

func (s *AssignmentService) GetByID(id uint) (*model.AssignmentModel, error) {
	var assignment model.AssignmentModel
	if err := s.DB.First(&assignment, id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (s *AssignmentService) ByURL(url string) (*model.AssignmentModel, error) {
	var assignment model.AssignmentModel
	err := s.DB.Where("url = ?", url).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ByCourse: assignment milik course; excludeMaze membuang tipe maze
// (level maze bukan soal mandiri).
func (s *AssignmentService) ByCourse(courseID uint, excludeMaze bool) ([]model.AssignmentModel, error) {
	query := s.DB.Where("course_id = ?", courseID)
	if excludeMaze {
		query = query.Where("type <> ?", "maze")
	}
	var assignments []model.AssignmentModel
	err := query.Find(&assignments).Error
	return assignments, err
}

// New: untuk maze, name diisi level-nya.
func (s *AssignmentService) New(ownerID, courseID uint, assignmentType, name, level string) (*model.AssignmentModel, error) {
	if name == "" {
		name = "Untitled"
	}
	if assignmentType == "maze" {
		name = level
	}
	// url unik per course; tanpa ini dua assignment baru akan tabrakan
	// di index (url, course_id)
	url := uuid.NewString()
	assignment := model.AssignmentModel{
		Name:     name,
		URL:      &url,
		Type:     assignmentType,
		OwnerID:  &ownerID,
		CourseID: &courseID,
	}
	if err := s.DB.Create(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (s *AssignmentService) ByIDOrNew(assignmentID *uint, ownerID, courseID uint) (*model.AssignmentModel, error) {
	if assignmentID != nil {
		var assignment model.AssignmentModel
		err := s.DB.First(&assignment, *assignmentID).Error
		if err == nil {
			return &assignment, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return s.New(ownerID, courseID, "blockpy", "", "")
}

func (s *AssignmentService) Remove(assignmentID uint) error {
	return s.DB.Delete(&model.AssignmentModel{}, assignmentID).Error
}

func (s *AssignmentService) IsInCourse(assignmentID, courseID uint) (bool, error) {
	assignment, err := s.GetByID(assignmentID)
	if err != nil {
		return false, err
	}
	return assignment.CourseID != nil && *assignment.CourseID == courseID, nil
}

// MoveCourse memindahkan assignment ke course lain sekaligus mencabut
// keanggotaannya dari group course lama.
func (s *AssignmentService) MoveCourse(assignmentID, newCourseID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.AssignmentModel{}).
			Where("id = ?", assignmentID).
			Update("course_id", newCourseID).Error; err != nil {
			return err
		}
		return tx.Where("assignment_id = ?", assignmentID).
			Delete(&groupModel.AssignmentGroupMembershipModel{}).Error
	})
}

// SaveFile menyalurkan "file" instructor ke kolom yang sesuai lalu
// menyimpan model (version ikut naik).
func (s *AssignmentService) SaveFile(assignmentID uint, filename, code string) (*model.AssignmentModel, error) {
	assignment, err := s.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	assignment.SaveFile(filename, code)
	if err := s.DB.Save(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *AssignmentService) UpdateSetting(assignmentID uint, key string, value any) (*model.AssignmentModel, error) {
	assignment, err := s.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if err := assignment.UpdateSetting(key, value); err != nil {
		return nil, err
	}
	if err := s.DB.Save(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

// EmailLookup untuk field denormalisasi owner_id__email saat encode.
func (s *AssignmentService) EmailLookup() schema.EmailLookup {
	return func(userID uint) (string, bool) {
		var user userModel.UserModel
		if err := s.DB.First(&user, userID).Error; err != nil {
			return "", false
		}
		return user.Email, true
	}
}

// EncodeFull: payload assignment lengkap dengan tags dan sample submissions.
func (s *AssignmentService) EncodeFull(assignment *model.AssignmentModel, owner schema.OwnerRef) (map[string]any, error) {
	lookup := s.EmailLookup()

	var tags []tagModel.AssignmentTagModel
	if err := s.DB.
		Joins("JOIN assignment_tag_membership m ON m.assignment_tag_id = assignment_tags.id").
		Where("m.assignment_id = ?", assignment.ID).
		Order("assignment_tags.name").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	encodedTags := make([]map[string]any, 0, len(tags))
	for i := range tags {
		encodedTags = append(encodedTags, tags[i].EncodeJSON(schema.FetchOwner(tags[i].OwnerID), lookup))
	}

	var samples []sampleModel.SampleSubmissionModel
	if err := s.DB.Where("assignment_id = ?", assignment.ID).
		Order("name").
		Find(&samples).Error; err != nil {
		return nil, err
	}
	encodedSamples := make([]map[string]any, 0, len(samples))
	for i := range samples {
		encodedSamples = append(encodedSamples, samples[i].EncodeJSON(schema.FetchOwner(samples[i].OwnerID), lookup))
	}

	return assignment.EncodeJSON(owner, lookup, encodedTags, encodedSamples), nil
}
