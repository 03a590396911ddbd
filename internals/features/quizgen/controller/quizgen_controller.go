package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	courseModel "credilink_backend/internals/features/courses/course/model"
	"credilink_backend/internals/features/quizgen/dto"
	"credilink_backend/internals/features/quizgen/service"
	helper "credilink_backend/internals/helpers"
	"credilink_backend/internals/helpers/apperr"
)

type QuizGenController struct {
	DB       *gorm.DB
	Service  *service.QuizGenService
	Validate *validator.Validate
}

func NewQuizGenController(db *gorm.DB, svc *service.QuizGenService) *QuizGenController {
	return &QuizGenController{
		DB:       db,
		Service:  svc,
		Validate: validator.New(),
	}
}

// POST /courses/:course_id/modules/:module_id/quiz/generate
// Generates from the transcript (or a YouTube link) and stores the quiz on
// the module.
func (ctl *QuizGenController) GenerateModuleQuiz(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("course_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}
	moduleID := c.Params("module_id")

	var req dto.GenerateModuleQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var quiz *service.GeneratedQuiz
	if req.VideoURL != "" {
		quiz, err = ctl.Service.GenerateModuleQuizFromVideo(c.Context(), req.VideoURL, req.ModuleTitle, req.NumQuestions)
	} else {
		quiz, err = ctl.Service.GenerateModuleQuiz(c.Context(), req.Transcript, req.ModuleTitle, req.NumQuestions)
	}
	if err != nil {
		return helper.FromAppError(c, err)
	}
	if err := ctl.Service.StoreModuleQuiz(c.Context(), courseID, moduleID, quiz); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Module quiz generated", quiz)
}

// POST /courses/:course_id/final-test/generate
// Derives the final test from the course's module quizzes and stores it.
func (ctl *QuizGenController) GenerateFinalTest(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("course_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}

	var req dto.GenerateFinalTestRequest
	_ = c.BodyParser(&req) // empty body means defaults

	course, err := ctl.loadCourse(c, courseID)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	quiz, err := ctl.Service.GenerateFinalTest(c.Context(), course.CourseTitle, course.Modules(), req.NumQuestions)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	if err := ctl.Service.StoreFinalTest(c.Context(), courseID, quiz); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Final test generated", quiz)
}

// POST /courses/:course_id/quiz/explanations
// Learner-facing feedback for a finished module quiz.
func (ctl *QuizGenController) ExplainAnswers(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("course_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}

	var req dto.ExplainAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	course, err := ctl.loadCourse(c, courseID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	mod, ok := course.ModuleByID(req.ModuleID)
	if !ok {
		return helper.Error(c, fiber.StatusBadRequest, "Module does not belong to this course")
	}

	explanations, err := ctl.Service.AnswerExplanations(c.Context(), mod.Quiz.Questions, req.Answers)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Explanations generated", explanations)
}

func (ctl *QuizGenController) loadCourse(c *fiber.Ctx, courseID uuid.UUID) (*courseModel.CourseModel, error) {
	var course courseModel.CourseModel
	if err := ctl.DB.WithContext(c.Context()).First(&course, "course_id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("course not found")
		}
		return nil, err
	}
	return &course, nil
}
