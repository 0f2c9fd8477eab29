// file: internals/features/submissions/report/controller/report_controller.go
package controller

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	reportService "kodingku_backend/internals/features/submissions/report/service"
	userService "kodingku_backend/internals/features/users/user/service"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

var validate = validator.New()

type ReportController struct {
	DB      *gorm.DB
	Reports *reportService.ReportService
	Users   *userService.UserService
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{
		DB:      db,
		Reports: reportService.NewReportService(db),
		Users:   userService.NewUserService(db),
	}
}

func (ctrl *ReportController) requireInstructor(c *fiber.Ctx, courseID uint, feature string) (uint, error) {
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

func (ctrl *ReportController) ByCourse(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("course_id"), 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter course_id tidak valid")
	}
	if _, err := ctrl.requireInstructor(c, uint(courseID), "lihat report"); err != nil {
		return err
	}
	reports, err := ctrl.Reports.ByCourse(uint(courseID))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil report")
	}
	return helper.Success(c, "Report course", reports)
}

type BuildReportRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Title    string `json:"title" validate:"required,max=255"`
}

// Build agregasi skor terbaik per assignment, hasilnya disimpan sebagai jsonb.
func (ctrl *ReportController) Build(c *fiber.Ctx) error {
	var req BuildReportRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	userID, err := ctrl.requireInstructor(c, req.CourseID, "buat report")
	if err != nil {
		return err
	}
	report, err := ctrl.Reports.BuildScoreReport(req.CourseID, userID, req.Title)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat report")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Report dibuat", report)
}

type AssignGraderRequest struct {
	CourseID  uint `json:"course_id" validate:"required"`
	StudentID uint `json:"student_id" validate:"required"`
	GraderID  uint `json:"grader_id" validate:"required"`
}

func (ctrl *ReportController) AssignGrader(c *fiber.Ctx) error {
	var req AssignGraderRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if _, err := ctrl.requireInstructor(c, req.CourseID, "atur grader"); err != nil {
		return err
	}
	if err := ctrl.Reports.AssignGrader(req.CourseID, req.StudentID, req.GraderID); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menetapkan grader")
	}
	return helper.Success(c, "Grader ditetapkan", nil)
}

// MyStudents: daftar murid yang jadi tanggungan grader login.
func (ctrl *ReportController) MyStudents(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("course_id"), 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter course_id tidak valid")
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	studentIDs, err := ctrl.Reports.StudentsForGrader(uint(courseID), userID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil murid")
	}
	return helper.Success(c, "Murid grader", fiber.Map{"student_ids": studentIDs})
}
