// file: internals/features/users/user/controller/user_controller.go
package controller

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	userService "kodingku_backend/internals/features/users/user/service"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

type UserController struct {
	DB    *gorm.DB
	Users *userService.UserService
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{
		DB:    db,
		Users: userService.NewUserService(db),
	}
}

func (ctrl *UserController) GetByID(c *fiber.Ctx) error {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter id tidak valid")
	}

	requesterID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	// Profil orang lain hanya untuk admin
	if uint(id) != requesterID {
		isAdmin, err := ctrl.Users.IsAdmin(requesterID)
		if err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Gagal memeriksa role")
		}
		if !isAdmin {
			return helper.Error(c, fiber.StatusForbidden, constants.RoleErrorAdmin("lihat profil user lain"))
		}
	}

	user, err := ctrl.Users.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "User tidak ditemukan")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil user")
	}
	return helper.Success(c, "User", user)
}

func (ctrl *UserController) GetRoles(c *fiber.Ctx) error {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter id tidak valid")
	}
	roles, err := ctrl.Users.GetRoles(uint(id))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil role")
	}
	return helper.Success(c, "Role user", roles)
}

// GetEditableCourses mengembalikan course yang boleh diedit user login.
func (ctrl *UserController) GetEditableCourses(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	courseIDs, err := ctrl.Users.GetEditableCourseIDs(userID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil course")
	}
	return helper.Success(c, "Course yang bisa diedit", fiber.Map{
		"course_ids": courseIDs,
	})
}
