// file: internals/features/users/user/model/user_model.go
package model

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"kodingku_backend/internals/constants"
)

type UserModel struct {
	ID        uint   `gorm:"primaryKey;column:id" json:"id"`
	FirstName string `gorm:"type:varchar(255);column:first_name" json:"first_name"`
	LastName  string `gorm:"type:varchar(255);column:last_name" json:"last_name"`

	// Email dipakai untuk lookup case-insensitive; beberapa LMS mengirim
	// email dalam huruf kapital semua.
	Email string `gorm:"type:varchar(255);not null;uniqueIndex;column:email" json:"email"`

	// Kosong untuk user yang autentikasinya eksternal (LTI).
	Password    string     `gorm:"type:varchar(255);column:password" json:"-"`
	Active      bool       `gorm:"not null;default:true;column:active" json:"active"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *UserModel) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *UserModel) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(pwd))
}

// IsLTIInstructor: apakah salah satu role (string bebas dari LMS) termasuk staff.
func IsLTIInstructor(givenRoles []string) bool {
	for _, role := range givenRoles {
		lower := strings.ToLower(role)
		for _, staff := range constants.LTIStaffRoles {
			if lower == staff {
				return true
			}
		}
	}
	return false
}

// AuthenticationModel mengikat akun identity-provider eksternal ke satu user.
// Unik per (type, value).
type AuthenticationModel struct {
	ID     uint   `gorm:"primaryKey;column:id" json:"id"`
	Type   string `gorm:"type:varchar(80);not null;uniqueIndex:idx_authentication_type_value;column:type" json:"type"`
	Value  string `gorm:"type:varchar(255);not null;uniqueIndex:idx_authentication_type_value;column:value" json:"value"`
	UserID uint   `gorm:"not null;index;column:user_id" json:"user_id"`

	User *UserModel `gorm:"foreignKey:UserID" json:"-"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (AuthenticationModel) TableName() string { return "authentications" }

// Provider autentikasi yang dikenal.
var AuthenticationTypes = []string{"local", "canvas", "google"}

// RoleModel memberi capability ke user, scoped ke course
// (course_id NULL = berlaku global).
type RoleModel struct {
	ID       uint   `gorm:"primaryKey;column:id" json:"id"`
	Name     string `gorm:"type:varchar(80);not null;column:name" json:"name"`
	UserID   uint   `gorm:"not null;index;column:user_id" json:"user_id"`
	CourseID *uint  `gorm:"index;column:course_id" json:"course_id,omitempty"`

	DateCreated  time.Time `gorm:"column:date_created;autoCreateTime" json:"date_created"`
	DateModified time.Time `gorm:"column:date_modified;autoUpdateTime" json:"date_modified"`
}

func (RoleModel) TableName() string { return "roles" }
