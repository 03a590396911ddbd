package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"credilink_backend/internals/configs"
	"credilink_backend/internals/features/quizgen/client"
	"credilink_backend/internals/features/quizgen/controller"
	"credilink_backend/internals/features/quizgen/service"
	"credilink_backend/internals/middlewares"
)

func newController(db *gorm.DB) *controller.QuizGenController {
	svc := service.NewQuizGenService(db, client.NewGeminiClient(configs.GeminiAPIKey))
	return controller.NewQuizGenController(db, svc)
}

// QuizGenRoutes: learner-facing explanations, mounted behind AuthJWT.
func QuizGenRoutes(api fiber.Router, db *gorm.DB) {
	ctl := newController(db)

	api.Post("/courses/:course_id/quiz/explanations",
		middlewares.QuizGenRateLimiter(), ctl.ExplainAnswers)
}

// QuizGenAdminRoutes: quiz authoring, mounted behind AuthJWT + AdminOnly.
func QuizGenAdminRoutes(api fiber.Router, db *gorm.DB) {
	ctl := newController(db)

	limited := middlewares.QuizGenRateLimiter()
	api.Post("/courses/:course_id/modules/:module_id/quiz/generate", limited, ctl.GenerateModuleQuiz)
	api.Post("/courses/:course_id/final-test/generate", limited, ctl.GenerateFinalTest)
}
