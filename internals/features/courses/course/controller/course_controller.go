// file: internals/features/courses/course/controller/course_controller.go
package controller

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	courseService "kodingku_backend/internals/features/courses/course/service"
	userService "kodingku_backend/internals/features/users/user/service"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

var validate = validator.New()

type CourseController struct {
	DB      *gorm.DB
	Courses *courseService.CourseService
	Users   *userService.UserService
}

func NewCourseController(db *gorm.DB) *CourseController {
	return &CourseController{
		DB:      db,
		Courses: courseService.NewCourseService(db),
		Users:   userService.NewUserService(db),
	}
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Parameter "+name+" tidak valid")
	}
	return uint(parsed), nil
}

// requireInstructor menolak user yang bukan instructor/admin course itu.
func (ctrl *CourseController) requireInstructor(c *fiber.Ctx, courseID uint, feature string) (uint, error) {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return 0, err
	}
	cid := courseID
	isInstructor, err := ctrl.Users.IsInstructor(userID, &cid)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa role")
	}
	isAdmin, err := ctrl.Users.IsAdmin(userID)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa role")
	}
	if !isInstructor && !isAdmin {
		return 0, fiber.NewError(fiber.StatusForbidden, constants.RoleErrorInstructor(feature))
	}
	return userID, nil
}

func (ctrl *CourseController) GetPublic(c *fiber.Ctx) error {
	courses, err := ctrl.Courses.GetPublic()
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil course publik")
	}
	return helper.Success(c, "Course publik", courses)
}

func (ctrl *CourseController) GetByID(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	course, err := ctrl.Courses.GetByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Course tidak ditemukan")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil course")
	}
	return helper.Success(c, "Course", course)
}

type CreateCourseRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=private public"`
}

func (ctrl *CourseController) Create(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	course, err := ctrl.Courses.New(req.Name, userID, req.Visibility)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat course")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Course dibuat", course)
}

type RenameCourseRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (ctrl *CourseController) Rename(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := ctrl.requireInstructor(c, courseID, "rename course"); err != nil {
		return err
	}
	var req RenameCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	course, err := ctrl.Courses.Rename(courseID, req.Name)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengganti nama course")
	}
	return helper.Success(c, "Course diperbarui", course)
}

func (ctrl *CourseController) Delete(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := ctrl.requireInstructor(c, courseID, "hapus course"); err != nil {
		return err
	}
	removeLinked := c.QueryBool("remove_linked", false)
	if err := ctrl.Courses.Remove(courseID, removeLinked); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menghapus course")
	}
	return helper.Success(c, "Course dihapus", fiber.Map{
		"id":            courseID,
		"remove_linked": removeLinked,
	})
}

func (ctrl *CourseController) GetGroups(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	groups, err := ctrl.Courses.GetAssignmentGroups(courseID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil group")
	}
	return helper.Success(c, "Assignment group", groups)
}

func (ctrl *CourseController) GetStudents(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := ctrl.requireInstructor(c, courseID, "daftar murid"); err != nil {
		return err
	}
	students, err := ctrl.Courses.GetStudents(courseID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil murid")
	}
	return helper.Success(c, "Murid course", students)
}

type UpdateRolesRequest struct {
	UserID uint     `json:"user_id" validate:"required"`
	Roles  []string `json:"roles" validate:"required"`
}

// UpdateRoles sinkronkan role satu user di course ini.
func (ctrl *CourseController) UpdateRoles(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := ctrl.requireInstructor(c, courseID, "atur role"); err != nil {
		return err
	}
	var req UpdateRolesRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := ctrl.Users.UpdateRoles(req.UserID, req.Roles, courseID); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memperbarui role")
	}
	return helper.Success(c, "Role diperbarui", nil)
}
