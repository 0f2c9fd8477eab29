// file: internals/features/courses/course/service/course_service.go
package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	groupModel "kodingku_backend/internals/features/assignments/group/model"
	sampleModel "kodingku_backend/internals/features/assignments/sample/model"
	courseModel "kodingku_backend/internals/features/courses/course/model"
	userModel "kodingku_backend/internals/features/users/user/model"
	helper "kodingku_backend/internals/helpers"
)

type CourseService struct {
	DB *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{DB: db}
}

func (s *CourseService) GetByID(id uint) (*courseModel.CourseModel, error) {
	var course courseModel.CourseModel
	if err := s.DB.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *CourseService) ByURL(url string) (*courseModel.CourseModel, error) {
	var course courseModel.CourseModel
	err := s.DB.Where("url = ?", url).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *CourseService) GetPublic() ([]courseModel.CourseModel, error) {
	var courses []courseModel.CourseModel
	err := s.DB.Where("visibility = ?", "public").Find(&courses).Error
	return courses, err
}

// New membuat course native sekaligus role instructor untuk owner-nya.
// Visibility selain "public" dipaksa jadi "private".
func (s *CourseService) New(name string, ownerID uint, visibility string) (*courseModel.CourseModel, error) {
	if visibility != "public" {
		visibility = "private"
	}
	var course courseModel.CourseModel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// url slug unik dipakai merge-by-url saat import bundle
		url, err := helper.EnsureUniqueSlugCI(context.Background(), tx,
			courseModel.CourseModel{}.TableName(), "url",
			helper.Slugify(name, 100), nil, 100)
		if err != nil {
			return err
		}
		course = courseModel.CourseModel{
			Name:       name,
			OwnerID:    &ownerID,
			Service:    "native",
			Visibility: visibility,
			URL:        &url,
		}
		if err := tx.Create(&course).Error; err != nil {
			return err
		}
		courseID := course.ID
		return tx.Create(&userModel.RoleModel{
			Name:     constants.RoleInstructor,
			UserID:   ownerID,
			CourseID: &courseID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *CourseService) NewLTICourse(provider, externalID, name string, userID uint, endpoint string) (*courseModel.CourseModel, error) {
	course := courseModel.CourseModel{
		Name:       name,
		OwnerID:    &userID,
		Service:    provider,
		ExternalID: externalID,
		Endpoint:   endpoint,
		Visibility: "private",
	}
	if err := s.DB.Create(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// FromLTI cari course berdasarkan external_id milik provider,
// buat baru kalau belum ada.
func (s *CourseService) FromLTI(provider, ltiContextID, name string, userID uint, endpoint string) (*courseModel.CourseModel, error) {
	var course courseModel.CourseModel
	err := s.DB.Where("service = ? AND external_id = ?", provider, ltiContextID).
		First(&course).Error
	if err == nil {
		return &course, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.NewLTICourse(provider, ltiContextID, name, userID, endpoint)
}

func (s *CourseService) Rename(courseID uint, name string) (*courseModel.CourseModel, error) {
	course, err := s.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	course.Name = name
	if err := s.DB.Save(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateEndpoint(courseID uint, endpoint string) error {
	return s.DB.Model(&courseModel.CourseModel{}).
		Where("id = ?", courseID).
		Update("endpoint", endpoint).Error
}

// Remove hapus course; removeLinked=true ikut menghapus membership,
// assignment (beserta sample submission-nya), group, dan role course itu.
// Semuanya dalam satu transaksi.
func (s *CourseService) Remove(courseID uint, removeLinked bool) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&courseModel.CourseModel{}, courseID).Error; err != nil {
			return err
		}
		if !removeLinked {
			return nil
		}

		var assignmentIDs []uint
		if err := tx.Model(&assignmentModel.AssignmentModel{}).
			Where("course_id = ?", courseID).
			Pluck("id", &assignmentIDs).Error; err != nil {
			return err
		}

		var groupIDs []uint
		if err := tx.Model(&groupModel.AssignmentGroupModel{}).
			Where("course_id = ?", courseID).
			Pluck("id", &groupIDs).Error; err != nil {
			return err
		}
		if len(groupIDs) > 0 {
			if err := tx.Where("assignment_group_id IN ?", groupIDs).
				Delete(&groupModel.AssignmentGroupMembershipModel{}).Error; err != nil {
				return err
			}
		}
		if len(assignmentIDs) > 0 {
			if err := tx.Where("assignment_id IN ?", assignmentIDs).
				Delete(&sampleModel.SampleSubmissionModel{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&assignmentModel.AssignmentModel{}, assignmentIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", courseID).
			Delete(&groupModel.AssignmentGroupModel{}).Error; err != nil {
			return err
		}
		return tx.Where("course_id = ?", courseID).
			Delete(&userModel.RoleModel{}).Error
	})
}

func (s *CourseService) GetStudents(courseID uint) ([]userModel.UserModel, error) {
	var users []userModel.UserModel
	err := s.DB.Distinct("users.*").
		Joins("JOIN roles ON roles.user_id = users.id").
		Where("roles.course_id = ?", courseID).
		Find(&users).Error
	return users, err
}

func (s *CourseService) GetAssignmentGroups(courseID uint) ([]groupModel.AssignmentGroupModel, error) {
	var groups []groupModel.AssignmentGroupModel
	err := s.DB.Where("course_id = ?", courseID).
		Order("name").
		Find(&groups).Error
	return groups, err
}
