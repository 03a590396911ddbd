package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"credilink_backend/internals/features/learning/progress/dto"
	"credilink_backend/internals/features/learning/progress/service"
	helper "credilink_backend/internals/helpers"
	middleware "credilink_backend/internals/middlewares/auth"
)

type ProgressController struct {
	Enrollment *service.EnrollmentService
	Attempts   *service.QuizAttemptService
	Query      *service.ProgressQueryService
	Validate   *validator.Validate
}

func NewProgressController(db *gorm.DB) *ProgressController {
	return &ProgressController{
		Enrollment: service.NewEnrollmentService(db),
		Attempts:   service.NewQuizAttemptService(db),
		Query:      service.NewProgressQueryService(db),
		Validate:   validator.New(),
	}
}

func courseIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("course_id"))
}

// POST /courses/:course_id/enroll
func (ctl *ProgressController) Enroll(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}

	progress, err := ctl.Enrollment.EnsureEnrolled(c.Context(), middleware.UserID(c), courseID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Enrolled", progress)
}

// POST /courses/:course_id/quiz
func (ctl *ProgressController) SubmitQuiz(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}

	var req dto.SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	result, err := ctl.Attempts.RecordQuizAttempt(c.Context(), service.RecordQuizAttemptInput{
		UserID:       middleware.UserID(c),
		CourseID:     courseID,
		ModuleID:     req.ModuleID,
		Answers:      req.Answers,
		PassingScore: req.PassingScore,
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Quiz attempt recorded", result)
}

// POST /courses/:course_id/modules/complete
func (ctl *ProgressController) MarkModuleComplete(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}

	var req dto.MarkModuleCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	progress, err := ctl.Attempts.MarkModuleComplete(c.Context(), middleware.UserID(c), courseID, req.ModuleID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Module marked complete", progress)
}

// GET /courses/:course_id/progress
func (ctl *ProgressController) GetStatus(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}

	status, err := ctl.Query.GetStatus(c.Context(), middleware.UserID(c), courseID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Progress fetched", status)
}

// GET /progress
func (ctl *ProgressController) ListMine(c *fiber.Ctx) error {
	statuses, err := ctl.Query.ListByUser(c.Context(), middleware.UserID(c))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Enrollments fetched", statuses)
}
