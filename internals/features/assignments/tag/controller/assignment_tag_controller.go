// file: internals/features/assignments/tag/controller/assignment_tag_controller.go
package controller

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	tagService "kodingku_backend/internals/features/assignments/tag/service"
	userService "kodingku_backend/internals/features/users/user/service"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

var validate = validator.New()

type AssignmentTagController struct {
	DB    *gorm.DB
	Tags  *tagService.AssignmentTagService
	Users *userService.UserService
}

func NewAssignmentTagController(db *gorm.DB) *AssignmentTagController {
	return &AssignmentTagController{
		DB:    db,
		Tags:  tagService.NewAssignmentTagService(db),
		Users: userService.NewUserService(db),
	}
}

func (ctrl *AssignmentTagController) requireInstructor(c *fiber.Ctx, courseID uint, feature string) (uint, error) {
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

func (ctrl *AssignmentTagController) GetAll(c *fiber.Ctx) error {
	tags, err := ctrl.Tags.GetAll()
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil tag")
	}
	return helper.Success(c, "Semua tag", tags)
}

func (ctrl *AssignmentTagController) ByCourse(c *fiber.Ctx) error {
	raw := c.Params("course_id")
	courseID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter course_id tidak valid")
	}
	tags, err := ctrl.Tags.ByCourse(uint(courseID))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil tag")
	}
	return helper.Success(c, "Tag course", tags)
}

type CreateTagRequest struct {
	CourseID    uint   `json:"course_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=255"`
	Kind        string `json:"kind" validate:"omitempty,oneof=misconception compliment objective topic"`
	Level       string `json:"level" validate:"omitempty,max=255"`
	Description string `json:"description"`
}

func (ctrl *AssignmentTagController) Create(c *fiber.Ctx) error {
	var req CreateTagRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	userID, err := ctrl.requireInstructor(c, req.CourseID, "buat tag")
	if err != nil {
		return err
	}
	tag, err := ctrl.Tags.New(userID, req.CourseID, req.Name, req.Kind, req.Description, req.Level)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat tag")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Tag dibuat", tag)
}

type TagMembershipRequest struct {
	AssignmentID uint `json:"assignment_id" validate:"required"`
	TagID        uint `json:"tag_id" validate:"required"`
}

func (ctrl *AssignmentTagController) Attach(c *fiber.Ctx) error {
	var req TagMembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := ctrl.Tags.AttachTag(req.AssignmentID, req.TagID); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memasang tag")
	}
	return helper.Success(c, "Tag terpasang", nil)
}

func (ctrl *AssignmentTagController) Detach(c *fiber.Ctx) error {
	var req TagMembershipRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := ctrl.Tags.DetachTag(req.AssignmentID, req.TagID); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal melepas tag")
	}
	return helper.Success(c, "Tag dilepas", nil)
}
