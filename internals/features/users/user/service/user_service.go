// file: internals/features/users/user/service/user_service.go
package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	"kodingku_backend/internals/features/users/user/model"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) GetByID(id uint) (*model.UserModel, error) {
	var user model.UserModel
	if err := s.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindStudent cari user berdasarkan email, case-insensitive.
// Beberapa LMS mengirim alamat email dalam huruf kapital semua.
// Return nil (tanpa error) kalau tidak ketemu.
func (s *UserService) FindStudent(email string) (*model.UserModel, error) {
	var user model.UserModel
	err := s.DB.Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// NewFromInstructor dipakai saat instructor mendaftarkan murid secara manual.
func (s *UserService) NewFromInstructor(email, firstName, lastName string) (*model.UserModel, error) {
	user := model.UserModel{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Active:    true,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FromLTI resolve user untuk (service eksternal, user_id eksternal).
// Urutannya: cari Authentication yang cocok; kalau tidak ada, cari user
// dengan email yang sama lalu daftarkan authentication baru; kalau tetap
// tidak ada, buat user baru sekaligus authentication-nya.
func (s *UserService) FromLTI(provider, ltiUserID, email, firstName, lastName string) (*model.UserModel, error) {
	var auth model.AuthenticationModel
	err := s.DB.Where("type = ? AND value = ?", provider, ltiUserID).First(&auth).Error
	if err == nil {
		var user model.UserModel
		if err := s.DB.First(&user, auth.UserID).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	existing, err := s.FindStudent(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.RegisterAuthentication(existing.ID, provider, ltiUserID); err != nil {
			return nil, err
		}
		return existing, nil
	}

	var created model.UserModel
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		created = model.UserModel{
			FirstName: firstName,
			LastName:  lastName,
			Email:     strings.ToLower(email),
			Active:    true,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		return tx.Create(&model.AuthenticationModel{
			Type:   provider,
			Value:  ltiUserID,
			UserID: created.ID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *UserService) RegisterAuthentication(userID uint, provider, value string) error {
	return s.DB.Create(&model.AuthenticationModel{
		Type:   provider,
		Value:  value,
		UserID: userID,
	}).Error
}

func (s *UserService) GetRoles(userID uint) ([]model.RoleModel, error) {
	var roles []model.RoleModel
	err := s.DB.Where("user_id = ?", userID).Find(&roles).Error
	return roles, err
}

func (s *UserService) GetCourseRoles(userID, courseID uint) ([]model.RoleModel, error) {
	var roles []model.RoleModel
	err := s.DB.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&roles).Error
	return roles, err
}

func (s *UserService) AddRole(userID uint, name string, courseID *uint) error {
	return s.DB.Create(&model.RoleModel{
		Name:     strings.ToLower(name),
		UserID:   userID,
		CourseID: courseID,
	}).Error
}

// UpdateRoles sinkronkan role user pada satu course ke daftar baru:
// role lama yang tidak disebut dihapus, nama baru yang belum ada ditambahkan.
// Perbandingan nama case-insensitive.
func (s *UserService) UpdateRoles(userID uint, newNames []string, courseID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var old []model.RoleModel
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&old).Error; err != nil {
			return err
		}

		wanted := make(map[string]bool, len(newNames))
		for _, n := range newNames {
			wanted[strings.ToLower(n)] = true
		}
		existing := make(map[string]bool, len(old))
		for _, role := range old {
			lower := strings.ToLower(role.Name)
			existing[lower] = true
			if !wanted[lower] {
				if err := tx.Delete(&model.RoleModel{}, role.ID).Error; err != nil {
					return err
				}
			}
		}
		for name := range wanted {
			if !existing[name] {
				cid := courseID
				if err := tx.Create(&model.RoleModel{
					Name:     name,
					UserID:   userID,
					CourseID: &cid,
				}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func roleNames(roles []model.RoleModel, courseID *uint) map[string]bool {
	names := make(map[string]bool, len(roles))
	for _, role := range roles {
		if courseID != nil {
			if role.CourseID == nil || *role.CourseID != *courseID {
				continue
			}
		}
		names[strings.ToLower(role.Name)] = true
	}
	return names
}

func (s *UserService) IsAdmin(userID uint) (bool, error) {
	roles, err := s.GetRoles(userID)
	if err != nil {
		return false, err
	}
	return roleNames(roles, nil)[constants.RoleAdmin], nil
}

func (s *UserService) IsInstructor(userID uint, courseID *uint) (bool, error) {
	roles, err := s.GetRoles(userID)
	if err != nil {
		return false, err
	}
	return roleNames(roles, courseID)[constants.RoleInstructor], nil
}

// IsGrader: instructor, TA, atau role LTI "none" (admin LMS) dianggap grader.
func (s *UserService) IsGrader(userID uint, courseID *uint) (bool, error) {
	roles, err := s.GetRoles(userID)
	if err != nil {
		return false, err
	}
	names := roleNames(roles, courseID)
	return names[constants.RoleInstructor] ||
		names[constants.LTIRoleNone] ||
		names[constants.LTIRoleTeachingAssistant], nil
}

func (s *UserService) IsStudent(userID uint, courseID *uint) (bool, error) {
	roles, err := s.GetRoles(userID)
	if err != nil {
		return false, err
	}
	return roleNames(roles, courseID)[constants.RoleLearner], nil
}

func (s *UserService) InCourse(userID, courseID uint) (bool, error) {
	var count int64
	err := s.DB.Model(&model.RoleModel{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (s *UserService) GetEditableCourseIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := s.DB.Model(&model.RoleModel{}).
		Distinct("course_id").
		Where("user_id = ? AND course_id IS NOT NULL AND name IN ?", userID,
			[]string{constants.RoleInstructor, constants.RoleAdmin}).
		Pluck("course_id", &ids).Error
	return ids, err
}
