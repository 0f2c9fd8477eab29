// file: internals/features/portability/controller/portability_controller.go
package controller

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	courseService "kodingku_backend/internals/features/courses/course/service"
	"kodingku_backend/internals/features/portability/bundle"
	"kodingku_backend/internals/features/portability/progsnap"
	"kodingku_backend/internals/features/portability/zipexport"
	userService "kodingku_backend/internals/features/users/user/service"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

var validate = validator.New()

type PortabilityController struct {
	DB       *gorm.DB
	Bundles  *bundle.BundleService
	ProgSnap *progsnap.ProgSnapService
	Zips     *zipexport.ZipExportService
	Courses  *courseService.CourseService
	Users    *userService.UserService
}

func NewPortabilityController(db *gorm.DB) *PortabilityController {
	return &PortabilityController{
		DB:       db,
		Bundles:  bundle.NewBundleService(db),
		ProgSnap: progsnap.NewProgSnapService(db),
		Zips:     zipexport.NewZipExportService(db),
		Courses:  courseService.NewCourseService(db),
		Users:    userService.NewUserService(db),
	}
}

func (ctrl *PortabilityController) requireInstructor(c *fiber.Ctx, courseID uint, feature string) (uint, error) {
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

type ImportBundleRequest struct {
	CourseID *uint         `json:"course_id"`
	Bundle   bundle.Bundle `json:"bundle" validate:"required"`
}

// ImportBundle memuat course + assignment + group + membership sekaligus,
// satu transaksi: gagal satu berarti batal semua.
func (ctrl *PortabilityController) ImportBundle(c *fiber.Ctx) error {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	var req ImportBundleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if req.CourseID != nil {
		if _, err := ctrl.requireInstructor(c, *req.CourseID, "import bundle"); err != nil {
			return err
		}
	}
	courseID, err := ctrl.Bundles.ImportBundle(req.Bundle, userID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, bundle.ErrMissingCourse):
			return helper.Error(c, fiber.StatusBadRequest, "Bundle tidak memuat course")
		case errors.Is(err, bundle.ErrMissingReference):
			return helper.Error(c, fiber.StatusBadRequest, "Membership menunjuk url yang tidak ada di bundle")
		default:
			return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengimport bundle")
		}
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Bundle terimport", fiber.Map{
		"course_id": courseID,
	})
}

// ExportBundle menerima map kategori -> daftar id/url dan mengembalikan
// payload JSON per kategori.
func (ctrl *PortabilityController) ExportBundle(c *fiber.Ctx) error {
	if _, err := helperAuth.GetUserIDFromToken(c); err != nil {
		return err
	}
	var request map[string][]any
	if err := sonic.Unmarshal(c.Body(), &request); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	exported, err := ctrl.Bundles.ExportBundle(request)
	if err != nil {
		switch {
		case errors.Is(err, bundle.ErrUnknownCategory):
			return helper.Error(c, fiber.StatusBadRequest, "Kategori export tidak dikenal")
		case errors.Is(err, bundle.ErrUnsupportedIdentifier):
			return helper.Error(c, fiber.StatusBadRequest, "Identifier export tidak didukung")
		default:
			return helper.Error(c, fiber.StatusInternalServerError, "Gagal meng-export bundle")
		}
	}
	return helper.Success(c, "Bundle export", exported)
}

// ExportCourse mengembalikan satu course utuh sebagai bundle JSON.
func (ctrl *PortabilityController) ExportCourse(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("course_id"), 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter course_id tidak valid")
	}
	if _, err := ctrl.requireInstructor(c, uint(courseID), "export course"); err != nil {
		return err
	}
	exported, err := ctrl.Bundles.ExportCourse(uint(courseID))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal meng-export course")
	}
	return helper.Success(c, "Course export", exported)
}

// ExportProgSnap streaming zip dataset ProgSnap2 untuk satu course.
// Query group_ids (csv) membatasi ke assignment group tertentu.
func (ctrl *PortabilityController) ExportProgSnap(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("course_id"), 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter course_id tidak valid")
	}
	if _, err := ctrl.requireInstructor(c, uint(courseID), "export progsnap"); err != nil {
		return err
	}

	var groupIDs []uint
	if raw := strings.TrimSpace(c.Query("group_ids")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return helper.Error(c, fiber.StatusBadRequest, "Query group_ids tidak valid")
			}
			groupIDs = append(groupIDs, uint(id))
		}
	}

	filename := fmt.Sprintf("progsnap2_course_%d_%s.zip", courseID, time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)

	// Dataset bisa besar; tulis langsung ke response lewat pipe, jangan
	// ditampung dulu di memory.
	ctx := c.UserContext()
	reader, writer := io.Pipe()
	go func() {
		writer.CloseWithError(ctrl.ProgSnap.Export(ctx, writer, uint(courseID), groupIDs))
	}()
	return c.SendStream(reader)
}

// ExportCourseZip: arsip semua submission per assignment per murid.
func (ctrl *PortabilityController) ExportCourseZip(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("course_id"), 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter course_id tidak valid")
	}
	if _, err := ctrl.requireInstructor(c, uint(courseID), "export zip"); err != nil {
		return err
	}
	data, err := ctrl.Zips.ExportCourseZip(uint(courseID))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat arsip")
	}
	filename := fmt.Sprintf("course_%d_submissions.zip", courseID)
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
