// file: internals/features/assignments/assignment/controller/assignment_controller.go
package controller

import (
	"errors"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	assignmentModel "kodingku_backend/internals/features/assignments/assignment/model"
	assignmentService "kodingku_backend/internals/features/assignments/assignment/service"
	userService "kodingku_backend/internals/features/users/user/service"
	"kodingku_backend/internals/features/portability/schema"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

var validate = validator.New()

type AssignmentController struct {
	DB          *gorm.DB
	Assignments *assignmentService.AssignmentService
	Users       *userService.UserService
}

func NewAssignmentController(db *gorm.DB) *AssignmentController {
	return &AssignmentController{
		DB:          db,
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

// assignmentCourseID memastikan assignment terikat course sebelum cek role.
func assignmentCourseID(assignment *assignmentModel.AssignmentModel) (uint, error) {
	if assignment.CourseID == nil {
		return 0, fiber.NewError(fiber.StatusConflict, "Assignment tidak terikat course")
	}
	return *assignment.CourseID, nil
}

func (ctrl *AssignmentController) requireInstructor(c *fiber.Ctx, courseID uint, feature string) (uint, error) {
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
		isAdmin, err := ctrl.Users.IsAdmin(userID)
		if err != nil {
			return 0, fiber.NewError(fiber.StatusInternalServerError, "Gagal memeriksa role")
		}
		if !isAdmin {
			return 0, fiber.NewError(fiber.StatusForbidden, constants.RoleErrorInstructor(feature))
		}
	}
	return userID, nil
}

func (ctrl *AssignmentController) loadAssignment(c *fiber.Ctx) (*assignmentModel.AssignmentModel, error) {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return nil, err
	}
	assignment, err := ctrl.Assignments.GetByID(assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Assignment tidak ditemukan")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal mengambil assignment")
	}
	return assignment, nil
}

// checkAccess memeriksa IP range + passcode assignment sebelum murid membuka soal.
func (ctrl *AssignmentController) checkAccess(c *fiber.Ctx, assignment *assignmentModel.AssignmentModel) error {
	if !assignment.IsAllowed(c.IP()) {
		log.Printf("🚫 IP %s ditolak untuk assignment %d", c.IP(), assignment.ID)
		return fiber.NewError(fiber.StatusForbidden, "Alamat IP tidak diizinkan membuka assignment ini")
	}
	if assignment.PasscodeFails(c.Get("X-Assignment-Passcode", c.Query("passcode"))) {
		return fiber.NewError(fiber.StatusForbidden, "Passcode assignment salah")
	}
	return nil
}

func (ctrl *AssignmentController) GetByID(c *fiber.Ctx) error {
	assignment, err := ctrl.loadAssignment(c)
	if err != nil {
		return err
	}
	if err := ctrl.checkAccess(c, assignment); err != nil {
		return err
	}
	return helper.Success(c, "Assignment", assignment)
}

// Export mengembalikan payload JSON lengkap assignment (plus tag & sample).
func (ctrl *AssignmentController) Export(c *fiber.Ctx) error {
	assignment, err := ctrl.loadAssignment(c)
	if err != nil {
		return err
	}
	encoded, err := ctrl.Assignments.EncodeFull(assignment, schema.FetchOwner(assignment.OwnerID))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal meng-export assignment")
	}
	return helper.Success(c, "Assignment export", encoded)
}

func (ctrl *AssignmentController) ByCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "course_id")
	if err != nil {
		return err
	}
	excludeMaze := c.QueryBool("exclude_maze", false)
	assignments, err := ctrl.Assignments.ByCourse(courseID, excludeMaze)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil assignment")
	}
	return helper.Success(c, "Assignment course", assignments)
}

type CreateAssignmentRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	Type     string `json:"type" validate:"omitempty,oneof=blockpy maze reading quiz java typescript textbook explain"`
	Name     string `json:"name" validate:"omitempty,max=255"`
	Level    string `json:"level" validate:"omitempty,max=32"`
}

func (ctrl *AssignmentController) Create(c *fiber.Ctx) error {
	var req CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	userID, err := ctrl.requireInstructor(c, req.CourseID, "buat assignment")
	if err != nil {
		return err
	}
	assignment, err := ctrl.Assignments.New(userID, req.CourseID, req.Type, req.Name, req.Level)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat assignment")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Assignment dibuat", assignment)
}

func (ctrl *AssignmentController) Delete(c *fiber.Ctx) error {
	assignment, err := ctrl.loadAssignment(c)
	if err != nil {
		return err
	}
	courseID, err := assignmentCourseID(assignment)
	if err != nil {
		return err
	}
	if _, err := ctrl.requireInstructor(c, courseID, "hapus assignment"); err != nil {
		return err
	}
	if err := ctrl.Assignments.Remove(assignment.ID); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menghapus assignment")
	}
	return helper.Success(c, "Assignment dihapus", fiber.Map{"id": assignment.ID})
}

type SaveAssignmentFileRequest struct {
	Filename string `json:"filename" validate:"required"`
	Code     string `json:"code"`
}

// SaveFile menyimpan salah satu file instructor (on_run, starting_code, dst).
func (ctrl *AssignmentController) SaveFile(c *fiber.Ctx) error {
	assignment, err := ctrl.loadAssignment(c)
	if err != nil {
		return err
	}
	courseID, err := assignmentCourseID(assignment)
	if err != nil {
		return err
	}
	if _, err := ctrl.requireInstructor(c, courseID, "edit assignment"); err != nil {
		return err
	}
	var req SaveAssignmentFileRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	updated, err := ctrl.Assignments.SaveFile(assignment.ID, req.Filename, req.Code)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Nama file tidak dikenal")
	}
	return helper.Success(c, "File assignment disimpan", fiber.Map{
		"id":      updated.ID,
		"version": updated.Version,
	})
}

type UpdateSettingRequest struct {
	Key   string `json:"key" validate:"required"`
	Value any    `json:"value"`
}

func (ctrl *AssignmentController) UpdateSetting(c *fiber.Ctx) error {
	assignment, err := ctrl.loadAssignment(c)
	if err != nil {
		return err
	}
	courseID, err := assignmentCourseID(assignment)
	if err != nil {
		return err
	}
	if _, err := ctrl.requireInstructor(c, courseID, "ubah setting assignment"); err != nil {
		return err
	}
	var req UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	updated, err := ctrl.Assignments.UpdateSetting(assignment.ID, req.Key, req.Value)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memperbarui setting")
	}
	return helper.Success(c, "Setting diperbarui", fiber.Map{
		"id":       updated.ID,
		"settings": updated.Settings,
	})
}

type MoveCourseRequest struct {
	NewCourseID uint `json:"new_course_id" validate:"required"`
}

// MoveCourse memindahkan assignment ke course lain (membership lama dilepas).
func (ctrl *AssignmentController) MoveCourse(c *fiber.Ctx) error {
	assignment, err := ctrl.loadAssignment(c)
	if err != nil {
		return err
	}
	var req MoveCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	// Harus instructor di course asal DAN tujuan
	courseID, err := assignmentCourseID(assignment)
	if err != nil {
		return err
	}
	if _, err := ctrl.requireInstructor(c, courseID, "pindah assignment"); err != nil {
		return err
	}
	if _, err := ctrl.requireInstructor(c, req.NewCourseID, "pindah assignment"); err != nil {
		return err
	}
	if err := ctrl.Assignments.MoveCourse(assignment.ID, req.NewCourseID); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memindahkan assignment")
	}
	return helper.Success(c, "Assignment dipindahkan", fiber.Map{
		"id":        assignment.ID,
		"course_id": req.NewCourseID,
	})
}
