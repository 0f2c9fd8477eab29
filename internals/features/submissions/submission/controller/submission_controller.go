// file: internals/features/submissions/submission/controller/submission_controller.go
package controller

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/configs"
	"kodingku_backend/internals/constants"
	assignmentService "kodingku_backend/internals/features/assignments/assignment/service"
	submissionModel "kodingku_backend/internals/features/submissions/submission/model"
	submissionService "kodingku_backend/internals/features/submissions/submission/service"
	userService "kodingku_backend/internals/features/users/user/service"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

var validate = validator.New()

type SubmissionController struct {
	DB          *gorm.DB
	Submissions *submissionService.SubmissionService
	Assignments *assignmentService.AssignmentService
	Users       *userService.UserService
}

func NewSubmissionController(db *gorm.DB) *SubmissionController {
	return &SubmissionController{
		DB:          db,
		Submissions: submissionService.NewSubmissionService(db, configs.UploadsDir),
		Assignments: assignmentService.NewAssignmentService(db),
		Users:       userService.NewUserService(db),
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

func (ctrl *SubmissionController) loadSubmission(c *fiber.Ctx) (*submissionModel.SubmissionModel, error) {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return nil, err
	}
	submission, err := ctrl.Submissions.GetByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Submission tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil submission")
	}
	return submission, nil
}

// requireOwnerOrGrader: pemilik submission selalu boleh; selain itu harus
// grader di course submission tersebut.
func (ctrl *SubmissionController) requireOwnerOrGrader(c *fiber.Ctx, submission *submissionModel.SubmissionModel, feature string) (uint, error) {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return 0, err
	}
	if submission.UserID != nil && *submission.UserID == userID {
		return userID, nil
	}
	ok, err := ctrl.Users.IsGrader(userID, submission.CourseID)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa role")
	}
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, constants.RoleErrorGrader(feature))
	}
	return userID, nil
}

func (ctrl *SubmissionController) requireGrader(c *fiber.Ctx, courseID *uint, feature string) (uint, error) {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return 0, err
	}
	ok, err := ctrl.Users.IsGrader(userID, courseID)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa role")
	}
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, constants.RoleErrorGrader(feature))
	}
	return userID, nil
}

type LoadSubmissionRequest struct {
	AssignmentID      uint   `json:"assignment_id" validate:"required"`
	CourseID          uint   `json:"course_id" validate:"required"`
	AssignmentGroupID *uint  `json:"assignment_group_id"`
	NewSubmissionURL  string `json:"new_submission_url"`
	Passcode          string `json:"passcode"`
}

// LoadOrNew dipanggil editor saat membuka assignment: ambil submission
// yang ada atau buat baru (plus log File.Create pertama).
func (ctrl *SubmissionController) LoadOrNew(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req LoadSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	assignment, err := ctrl.Assignments.GetByID(req.AssignmentID)
	if err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Assignment tidak ditemukan")
	}
	if !assignment.IsAllowed(c.IP()) {
		return helper.Error(c, fiber.StatusForbidden, "Alamat IP tidak diizinkan membuka assignment ini")
	}
	if assignment.PasscodeFails(req.Passcode) {
		return helper.Error(c, fiber.StatusForbidden, "Passcode assignment salah")
	}
	submission, err := ctrl.Submissions.LoadOrNew(assignment, userID, req.CourseID, req.NewSubmissionURL, req.AssignmentGroupID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memuat submission")
	}
	return helper.Success(c, "Submission", submission)
}

func (ctrl *SubmissionController) GetByID(c *fiber.Ctx) error {
	submission, err := ctrl.loadSubmission(c)
	if err != nil {
		return err
	}
	if _, err := ctrl.requireOwnerOrGrader(c, submission, "lihat submission"); err != nil {
		return err
	}
	full, err := ctrl.Submissions.FullByID(submission.ID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil submission")
	}
	return helper.Success(c, "Submission", full)
}

type SaveCodeRequest struct {
	Filename string `json:"filename" validate:"required"`
	Code     string `json:"code"`
}

func (ctrl *SubmissionController) SaveCode(c *fiber.Ctx) error {
	submission, err := ctrl.loadSubmission(c)
	if err != nil {
		return err
	}
	if _, err := ctrl.requireOwnerOrGrader(c, submission, "simpan kode"); err != nil {
		return err
	}
	var req SaveCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	updated, err := ctrl.Submissions.SaveCode(submission.ID, req.Filename, req.Code)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Nama file tidak dikenal")
	}
	return helper.Success(c, "Kode disimpan", fiber.Map{
		"id":      updated.ID,
		"version": updated.Version,
	})
}

type GradeRequest struct {
	Score   int  `json:"score"`
	Correct bool `json:"correct"`
}

// UpdateGrade dipanggil autograder setelah menjalankan kode murid.
func (ctrl *SubmissionController) UpdateGrade(c *fiber.Ctx) error {
	submission, err := ctrl.loadSubmission(c)
	if err != nil {
		return err
	}
	if _, err := ctrl.requireOwnerOrGrader(c, submission, "update nilai"); err != nil {
		return err
	}
	var req GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	changed, err := ctrl.Submissions.UpdateSubmission(submission.ID, req.Score, req.Correct)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memperbarui nilai")
	}
	return helper.Success(c, "Nilai diperbarui", fiber.Map{
		"id":      submission.ID,
		"changed": changed,
	})
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	// kind: "submission" atau "grading"
	Kind string `json:"kind" validate:"omitempty,oneof=submission grading"`
}

func (ctrl *SubmissionController) UpdateStatus(c *fiber.Ctx) error {
	submission, err := ctrl.loadSubmission(c)
	if err != nil {
		return err
	}
	if _, err := ctrl.requireOwnerOrGrader(c, submission, "update status"); err != nil {
		return err
	}
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var ok bool
	if req.Kind == "grading" {
		ok, err = ctrl.Submissions.UpdateGradingStatus(submission.ID, req.Status)
	} else {
		ok, err = ctrl.Submissions.UpdateSubmissionStatus(submission.ID, req.Status)
	}
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memperbarui status")
	}
	if !ok {
		return helper.Error(c, fiber.StatusBadRequest, "Status tidak dikenal")
	}
	return helper.Success(c, "Status diperbarui", fiber.Map{"id": submission.ID, "status": req.Status})
}

type BlockImageRequest struct {
	Image string `json:"image" validate:"required"`
}

// SaveBlockImage menyimpan screenshot block editor (data URI webp/png).
func (ctrl *SubmissionController) SaveBlockImage(c *fiber.Ctx) error {
	submission, err := ctrl.loadSubmission(c)
	if err != nil {
		return err
	}
	if _, err := ctrl.requireOwnerOrGrader(c, submission, "simpan gambar"); err != nil {
		return err
	}
	var req BlockImageRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	path, err := ctrl.Submissions.SaveBlockImage(submission.ID, req.Image)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Gambar tidak valid")
	}
	return helper.Success(c, "Gambar disimpan", fiber.Map{"path": path})
}

// History mengembalikan log event submission ini, terbaru dulu, dengan paging.
func (ctrl *SubmissionController) History(c *fiber.Ctx) error {
	submission, err := ctrl.loadSubmission(c)
	if err != nil {
		return err
	}
	if _, err := ctrl.requireOwnerOrGrader(c, submission, "lihat riwayat"); err != nil {
		return err
	}
	if submission.CourseID == nil || submission.AssignmentID == nil || submission.UserID == nil {
		return helper.Success(c, "Riwayat submission", []any{})
	}
	paging := helper.ResolvePaging(c, 50, 500)
	logs, err := ctrl.Submissions.Logs.GetHistory(*submission.CourseID, *submission.AssignmentID, *submission.UserID, &paging)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil riwayat")
	}
	return helper.Success(c, "Riwayat submission", fiber.Map{
		"logs":     logs,
		"page":     paging.Page,
		"per_page": paging.PerPage,
	})
}

func (ctrl *SubmissionController) ByAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignment_id")
	if err != nil {
		return err
	}
	courseID, err := parseUintParam(c, "course_id")
	if err != nil {
		return err
	}
	cid := courseID
	if _, err := ctrl.requireGrader(c, &cid, "lihat submission assignment"); err != nil {
		return err
	}
	rows, err := ctrl.Submissions.ByAssignment(assignmentID, courseID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil submission")
	}
	return helper.Success(c, "Submission assignment", rows)
}

func (ctrl *SubmissionController) ByStudent(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "user_id")
	if err != nil {
		return err
	}
	courseID, err := parseUintParam(c, "course_id")
	if err != nil {
		return err
	}
	requesterID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	if requesterID != studentID {
		cid := courseID
		if _, err := ctrl.requireGrader(c, &cid, "lihat submission murid"); err != nil {
			return err
		}
	}
	rows, err := ctrl.Submissions.ByStudent(studentID, courseID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil submission")
	}
	return helper.Success(c, "Submission murid", rows)
}

// ByPendingReview: antrian review manual untuk grader.
func (ctrl *SubmissionController) ByPendingReview(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "course_id")
	if err != nil {
		return err
	}
	cid := courseID
	if _, err := ctrl.requireGrader(c, &cid, "lihat antrian review"); err != nil {
		return err
	}
	rows, err := ctrl.Submissions.ByPendingReview(courseID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil antrian review")
	}
	return helper.Success(c, "Antrian review", rows)
}
