// file: internals/features/users/auth/controller/auth_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/futurenda/google-auth-id-token-verifier"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	configs "kodingku_backend/internals/configs"
	userModel "kodingku_backend/internals/features/users/user/model"
	userService "kodingku_backend/internals/features/users/user/service"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

var validate = validator.New()

type AuthController struct {
	DB    *gorm.DB
	Users *userService.UserService
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Users: userService.NewUserService(db)}
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"max=255"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	// email disimpan lowercase supaya lookup konsisten
	existing, err := ctrl.Users.FindStudent(req.Email)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memeriksa email")
	}
	if existing != nil {
		return helper.Error(c, fiber.StatusConflict, "Email sudah terdaftar")
	}

	user := userModel.UserModel{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     strings.ToLower(req.Email),
		Active:    true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memproses password")
	}
	if err := ctrl.DB.Create(&user).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat user")
	}
	log.Printf("✅ User baru terdaftar: %s", user.Email)
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Registrasi berhasil", fiber.Map{
		"id":    user.ID,
		"email": user.Email,
	})
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	user, err := ctrl.Users.FindStudent(req.Email)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mencari user")
	}
	if user == nil || user.Password == "" {
		return helper.Error(c, fiber.StatusUnauthorized, "Email atau password salah")
	}
	if !user.Active {
		return helper.Error(c, fiber.StatusForbidden, "Akun dinonaktifkan")
	}
	if err := user.CheckPassword(req.Password); err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Email atau password salah")
	}

	token, err := helperAuth.MakeAccessToken(user.ID, user.Email)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat token")
	}
	return helper.Success(c, "Login berhasil", fiber.Map{
		"access_token": token,
		"user": fiber.Map{
			"id":         user.ID,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
		},
	})
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// GoogleLogin memverifikasi ID token Google lalu me-resolve user lewat
// jalur authentication provider "google" (buat baru kalau belum ada).
func (ctrl *AuthController) GoogleLogin(c *fiber.Ctx) error {
	var req GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if configs.GoogleClientID == "" {
		return helper.Error(c, fiber.StatusInternalServerError, "GOOGLE_CLIENT_ID belum diset")
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(req.IDToken, []string{configs.GoogleClientID}); err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "ID token Google tidak valid")
	}
	claims, err := googleAuthIDTokenVerifier.Decode(req.IDToken)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Gagal membaca ID token")
	}

	user, err := ctrl.Users.FromLTI("google", claims.Sub, claims.Email,
		claims.GivenName, claims.FamilyName)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memproses login Google")
	}

	token, err := helperAuth.MakeAccessToken(user.ID, user.Email)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat token")
	}
	return helper.Success(c, "Login Google berhasil", fiber.Map{
		"access_token": token,
		"user": fiber.Map{
			"id":         user.ID,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
		},
	})
}

func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	user, err := ctrl.Users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "User tidak ditemukan")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil profil")
	}
	roles, err := ctrl.Users.GetRoles(userID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil role")
	}
	return helper.Success(c, "Profil", fiber.Map{
		"user":  user,
		"roles": roles,
	})
}
