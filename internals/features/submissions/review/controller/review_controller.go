// file: internals/features/submissions/review/controller/review_controller.go
package controller

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kodingku_backend/internals/constants"
	reviewModel "kodingku_backend/internals/features/submissions/review/model"
	reviewService "kodingku_backend/internals/features/submissions/review/service"
	submissionService "kodingku_backend/internals/features/submissions/submission/service"
	userService "kodingku_backend/internals/features/users/user/service"
	"kodingku_backend/internals/configs"
	helper "kodingku_backend/internals/helpers"
	helperAuth "kodingku_backend/internals/helpers/auth"
)

var validate = validator.New()

type ReviewController struct {
	DB          *gorm.DB
	Reviews     *reviewService.ReviewService
	Submissions *submissionService.SubmissionService
	Users       *userService.UserService
}

func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{
		DB:          db,
		Reviews:     reviewService.NewReviewService(db),
		Submissions: submissionService.NewSubmissionService(db, configs.UploadsDir),
		Users:       userService.NewUserService(db),
	}
}

func (ctrl *ReviewController) requireGraderForSubmission(c *fiber.Ctx, submissionID uint, feature string) (uint, error) {
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return 0, err
	}
	submission, err := ctrl.Submissions.GetByID(submissionID)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusNotFound, "Submission tidak ditemukan")
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

// ForSubmission: pemilik submission boleh lihat review dirinya; grader juga.
func (ctrl *ReviewController) ForSubmission(c *fiber.Ctx) error {
	raw := c.Params("submission_id")
	submissionID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter submission_id tidak valid")
	}
	userID, err := helperAuth.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	submission, err := ctrl.Submissions.GetByID(uint(submissionID))
	if err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Submission tidak ditemukan")
	}
	isOwner := submission.UserID != nil && *submission.UserID == userID
	if !isOwner {
		ok, err := ctrl.Users.IsGrader(userID, submission.CourseID)
		if err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Gagal memeriksa role")
		}
		if !ok {
			return helper.Error(c, fiber.StatusForbidden, constants.RoleErrorGrader("lihat review"))
		}
	}
	reviews, err := ctrl.Reviews.ForSubmission(submission.ID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil review")
	}
	return helper.Success(c, "Review submission", reviews)
}

func (ctrl *ReviewController) GetGeneric(c *fiber.Ctx) error {
	if _, err := helperAuth.GetUserIDFromToken(c); err != nil {
		return err
	}
	reviews, err := ctrl.Reviews.GetGenericReviews()
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil review generic")
	}
	return helper.Success(c, "Review generic", reviews)
}

type CreateReviewRequest struct {
	SubmissionID  uint    `json:"submission_id" validate:"required"`
	Comment       string  `json:"comment"`
	Location      string  `json:"location"`
	Score         *int    `json:"score"`
	Generic       bool    `json:"generic"`
	TagID         *uint   `json:"tag_id"`
	ForkedID      *uint   `json:"forked_id"`
	ForkedVersion *int    `json:"forked_version"`
}

func (ctrl *ReviewController) Create(c *fiber.Ctx) error {
	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	authorID, err := ctrl.requireGraderForSubmission(c, req.SubmissionID, "buat review")
	if err != nil {
		return err
	}
	submission, err := ctrl.Submissions.GetByID(req.SubmissionID)
	if err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Submission tidak ditemukan")
	}
	review := reviewModel.ReviewModel{
		Comment:           req.Comment,
		Location:          req.Location,
		Score:             req.Score,
		Generic:           req.Generic,
		TagID:             req.TagID,
		SubmissionID:      &submission.ID,
		AuthorID:          &authorID,
		AssignmentVersion: submission.AssignmentVersion,
		SubmissionVersion: submission.Version,
		ForkedID:          req.ForkedID,
		ForkedVersion:     req.ForkedVersion,
	}
	if err := ctrl.Reviews.New(&review); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat review")
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Review dibuat", review)
}

func (ctrl *ReviewController) Edit(c *fiber.Ctx) error {
	raw := c.Params("id")
	reviewID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter id tidak valid")
	}
	var review reviewModel.ReviewModel
	if err := ctrl.DB.First(&review, uint(reviewID)).Error; err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Review tidak ditemukan")
	}
	if review.SubmissionID != nil {
		if _, err := ctrl.requireGraderForSubmission(c, *review.SubmissionID, "edit review"); err != nil {
			return err
		}
	} else if _, err := helperAuth.GetUserIDFromToken(c); err != nil {
		return err
	}
	var edit reviewService.ReviewEdit
	if err := c.BodyParser(&edit); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	updated, err := ctrl.Reviews.Edit(uint(reviewID), edit)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memperbarui review")
	}
	return helper.Success(c, "Review diperbarui", updated)
}

func (ctrl *ReviewController) Delete(c *fiber.Ctx) error {
	raw := c.Params("id")
	reviewID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter id tidak valid")
	}
	var review reviewModel.ReviewModel
	if err := ctrl.DB.First(&review, uint(reviewID)).Error; err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Review tidak ditemukan")
	}
	if review.SubmissionID != nil {
		if _, err := ctrl.requireGraderForSubmission(c, *review.SubmissionID, "hapus review"); err != nil {
			return err
		}
	}
	if err := ctrl.Reviews.Delete(uint(reviewID)); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menghapus review")
	}
	return helper.Success(c, "Review dihapus", fiber.Map{"id": reviewID})
}
