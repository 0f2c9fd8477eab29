// file: internals/features/submissions/log/controller/log_controller.go
package controller

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	logService "kodingku_backend/internals/features/submissions/log/service"
	userService "kodingku_backend/internals/features/users/user/service"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

var validate = validator.New()

type LogController struct {
	DB    *gorm.DB
	Logs  *logService.LogService
	Users *userService.UserService
}

func NewLogController(db *gorm.DB) *LogController {
	return &LogController{
		DB:    db,
		Logs:  logService.NewLogService(db),
		Users: userService.NewUserService(db),
	}
}

type LogEventRequest struct {
	AssignmentID      *uint  `json:"assignment_id"`
	AssignmentVersion int    `json:"assignment_version"`
	CourseID          *uint  `json:"course_id"`
	EventType         string `json:"event_type" validate:"required"`
	FilePath          string `json:"file_path"`
	Category          string `json:"category"`
	Label             string `json:"label"`
	Message           string `json:"message"`
	ClientTimestamp   string `json:"client_timestamp"`
	ClientTimezone    string `json:"client_timezone"`
}

// Record menerima satu event dari editor (File.Edit, Run.Program, dst).
func (ctrl *LogController) Record(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req LogEventRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	entry, err := ctrl.Logs.New(req.AssignmentID, req.AssignmentVersion, req.CourseID, &userID,
		req.EventType, req.FilePath, req.Category, req.Label, req.Message,
		req.ClientTimestamp, req.ClientTimezone)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menyimpan event")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Event tercatat", fiber.Map{"id": entry.ID})
}

func (ctrl *LogController) requireGrader(c *fiber.Ctx, courseID uint, feature string) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	cid := courseID
	ok, err := ctrl.Users.IsGrader(userID, &cid)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa role")
	}
	if !ok {
		return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorGrader(feature))
	}
	return nil
}

// History: riwayat event satu murid pada satu assignment.
func (ctrl *LogController) History(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("course_id"), 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter course_id tidak valid")
	}
	assignmentID, err := strconv.ParseUint(c.Query("assignment_id"), 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Query assignment_id tidak valid")
	}
	subjectID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Query user_id tidak valid")
	}

	requesterID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	if requesterID != uint(subjectID) {
		if err := ctrl.requireGrader(c, uint(courseID), "lihat riwayat murid"); err != nil {
			return err
		}
	}

	paging := helper.ResolvePaging(c, 50, 500)
	logs, err := ctrl.Logs.GetHistory(uint(courseID), uint(assignmentID), uint(subjectID), &paging)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil riwayat")
	}
	return helper.Success(c, "Riwayat event", fiber.Map{
		"logs":     logs,
		"page":     paging.Page,
		"per_page": paging.PerPage,
	})
}
