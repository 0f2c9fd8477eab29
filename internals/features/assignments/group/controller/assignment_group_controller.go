// file: internals/features/assignments/group/controller/assignment_group_controller.go
package controller

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	groupModel "kodingku_backend/internals/features/assignments/group/model"
	groupService "kodingku_backend/internals/features/assignments/group/service"
	userService "kodingku_backend/internals/features/users/user/service"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

var validate = validator.New()

type AssignmentGroupController struct {
	DB     *gorm.DB
	Groups *groupService.AssignmentGroupService
	Users  *userService.UserService
}

func NewAssignmentGroupController(db *gorm.DB) *AssignmentGroupController {
	return &AssignmentGroupController{
		DB:     db,
		Groups: groupService.NewAssignmentGroupService(db),
		Users:  userService.NewUserService(db),
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

// groupCourseID memastikan group terikat course sebelum cek role.
func groupCourseID(group *groupModel.AssignmentGroupModel) (uint, error) {
	if group.CourseID == nil {
		return 0, fiber.NewError(fiber.StatusConflict, "Group tidak terikat course")
	}
	return *group.CourseID, nil
}

func (ctrl *AssignmentGroupController) requireInstructor(c *fiber.Ctx, courseID uint, feature string) (uint, error) {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return 0, err
	}
	cid := courseID
	ok, err := ctrl.Users.IsInstructor(userID, &cid)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa role")
	}
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, constants.RoleErrorInstructor(feature))
	}
	return userID, nil
}

func (ctrl *AssignmentGroupController) loadGroup(c *fiber.Ctx) (*groupModel.AssignmentGroupModel, error) {
	groupID, err := parseUintParam(c, "id")
	if err != nil {
		return nil, err
	}
	group, err := ctrl.Groups.GetByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Assignment group tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil assignment group")
	}
	return group, nil
}

func (ctrl *AssignmentGroupController) GetByID(c *fiber.Ctx) error {
	group, err := ctrl.loadGroup(c)
	if err != nil {
		return err
	}
	return helper.Success(c, "Assignment group", group)
}

// GetAssignments mengembalikan assignment di dalam group, urut nama lalu posisi.
func (ctrl *AssignmentGroupController) GetAssignments(c *fiber.Ctx) error {
	group, err := ctrl.loadGroup(c)
	if err != nil {
		return err
	}
	assignments, err := ctrl.Groups.GetAssignments(group.ID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil assignment group")
	}
	return helper.Success(c, "Assignment di group", assignments)
}

func (ctrl *AssignmentGroupController) GetUngrouped(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "course_id")
	if err != nil {
		return err
	}
	assignments, err := ctrl.Groups.GetUngroupedAssignments(courseID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil assignment")
	}
	return helper.Success(c, "Assignment tanpa group", assignments)
}

type CreateGroupRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Name     string `json:"name" validate:"required,max=255"`
}

func (ctrl *AssignmentGroupController) Create(c *fiber.Ctx) error {
	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	userID, err := ctrl.requireInstructor(c, req.CourseID, "buat group")
	if err != nil {
		return err
	}
	group, err := ctrl.Groups.New(userID, req.CourseID, req.Name)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat group")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Group dibuat", group)
}

func (ctrl *AssignmentGroupController) Delete(c *fiber.Ctx) error {
	group, err := ctrl.loadGroup(c)
	if err != nil {
		return err
	}
	courseID, err := groupCourseID(group)
	if err != nil {
		return err
	}
	if _, err := ctrl.requireInstructor(c, courseID, "hapus group"); err != nil {
		return err
	}
	if err := ctrl.Groups.Remove(group.ID); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menghapus group")
	}
	return helper.Success(c, "Group dihapus", fiber.Map{"id": group.ID})
}

type MoveAssignmentRequest struct {
	AssignmentID uint `json:"assignment_id" validate:"required"`
	// -1 berarti lepas dari semua group
	NewGroupID int `json:"new_group_id"`
}

func (ctrl *AssignmentGroupController) MoveAssignment(c *fiber.Ctx) error {
	var req MoveAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if req.NewGroupID > 0 {
		group, err := ctrl.Groups.GetByID(uint(req.NewGroupID))
		if err != nil {
			return helper.Error(c, fiber.StatusNotFound, "Group tujuan tidak ditemukan")
		}
		courseID, err := groupCourseID(group)
		if err != nil {
			return err
		}
		if _, err := ctrl.requireInstructor(c, courseID, "pindah assignment"); err != nil {
			return err
		}
	} else if _, err := helperAuth.GetUserIDFromToken(c); err != nil {
		return err
	}
	if err := ctrl.Groups.MoveAssignment(req.AssignmentID, req.NewGroupID); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memindahkan assignment")
	}
	return helper.Success(c, "Assignment dipindahkan", fiber.Map{
		"assignment_id": req.AssignmentID,
		"group_id":      req.NewGroupID,
	})
}
