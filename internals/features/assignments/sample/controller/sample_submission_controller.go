// file: internals/features/assignments/sample/controller/sample_submission_controller.go
package controller

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	assignmentService "kodingku_backend/internals/features/assignments/assignment/service"
	sampleService "kodingku_backend/internals/features/assignments/sample/service"
	userService "kodingku_backend/internals/features/users/user/service"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

var validate = validator.New()

type SampleSubmissionController struct {
	DB          *gorm.DB
	Samples     *sampleService.SampleSubmissionService
	Assignments *assignmentService.AssignmentService
	Users       *userService.UserService
}

func NewSampleSubmissionController(db *gorm.DB) *SampleSubmissionController {
	return &SampleSubmissionController{
		DB:          db,
		Samples:     sampleService.NewSampleSubmissionService(db),
		Assignments: assignmentService.NewAssignmentService(db),
		Users:       userService.NewUserService(db),
	}
}

func (ctrl *SampleSubmissionController) requireInstructorForAssignment(c *fiber.Ctx, assignmentID uint, feature string) (uint, error) {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return 0, err
	}
	assignment, err := ctrl.Assignments.GetByID(assignmentID)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusNotFound, "Assignment tidak ditemukan")
	}
	if assignment.CourseID == nil {
		return 0, fiber.NewError(fiber.StatusConflict, "Assignment tidak terikat course")
	}
	ok, err := ctrl.Users.IsInstructor(userID, assignment.CourseID)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa role")
	}
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, constants.RoleErrorInstructor(feature))
	}
	return userID, nil
}

func (ctrl *SampleSubmissionController) ByAssignment(c *fiber.Ctx) error {
	raw := c.Params("assignment_id")
	assignmentID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter assignment_id tidak valid")
	}
	samples, err := ctrl.Samples.ByAssignment(uint(assignmentID))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil sample")
	}
	return helper.Success(c, "Sample submission", samples)
}

type CreateSampleRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required"`
	Name         string `json:"name" validate:"required,max=255"`
}

func (ctrl *SampleSubmissionController) Create(c *fiber.Ctx) error {
	var req CreateSampleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	userID, err := ctrl.requireInstructorForAssignment(c, req.AssignmentID, "buat sample")
	if err != nil {
		return err
	}
	sample, err := ctrl.Samples.New(userID, req.AssignmentID, req.Name)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat sample")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Sample dibuat", sample)
}

type UpdateSampleRequest struct {
	Name     *string `json:"name"`
	Status   *string `json:"status"`
	Code     *string `json:"code"`
	Score    *int    `json:"score"`
	Correct  *bool   `json:"correct"`
	Output   *string `json:"output"`
	Inputs   *string `json:"inputs"`
	Feedback *string `json:"feedback"`
}

func (ctrl *SampleSubmissionController) Update(c *fiber.Ctx) error {
	raw := c.Params("id")
	sampleID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter id tidak valid")
	}
	sample, err := ctrl.Samples.GetByID(uint(sampleID))
	if err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Sample tidak ditemukan")
	}
	if sample.AssignmentID == nil {
		return helper.Error(c, fiber.StatusConflict, "Sample tidak terhubung ke assignment")
	}
	if _, err := ctrl.requireInstructorForAssignment(c, *sample.AssignmentID, "edit sample"); err != nil {
		return err
	}

	var req UpdateSampleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if req.Name != nil {
		sample.Name = *req.Name
	}
	if req.Status != nil {
		sample.Status = *req.Status
	}
	if req.Code != nil {
		sample.Code = *req.Code
	}
	if req.Score != nil {
		sample.Score = *req.Score
	}
	if req.Correct != nil {
		sample.Correct = *req.Correct
	}
	if req.Output != nil {
		sample.Output = *req.Output
	}
	if req.Inputs != nil {
		sample.Inputs = *req.Inputs
	}
	if req.Feedback != nil {
		sample.Feedback = *req.Feedback
	}
	if err := ctrl.Samples.Save(sample); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menyimpan sample")
	}
	return helper.Success(c, "Sample diperbarui", sample)
}

func (ctrl *SampleSubmissionController) Delete(c *fiber.Ctx) error {
	raw := c.Params("id")
	sampleID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter id tidak valid")
	}
	sample, err := ctrl.Samples.GetByID(uint(sampleID))
	if err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Sample tidak ditemukan")
	}
	if sample.AssignmentID == nil {
		return helper.Error(c, fiber.StatusConflict, "Sample tidak terhubung ke assignment")
	}
	if _, err := ctrl.requireInstructorForAssignment(c, *sample.AssignmentID, "hapus sample"); err != nil {
		return err
	}
	if err := ctrl.Samples.Remove(sample.ID); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menghapus sample")
	}
	return helper.Success(c, "Sample dihapus", fiber.Map{"id": sample.ID})
}
