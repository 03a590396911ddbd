package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"credilink_backend/internals/features/learning/progress/controller"
)

// ProgressRoutes: enrollment and module completion, mounted behind AuthJWT.
func ProgressRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewProgressController(db)

	api.Get("/progress", ctl.ListMine)

	courses := api.Group("/courses/:course_id")
	courses.Post("/enroll", ctl.Enroll)
	courses.Post("/quiz", ctl.SubmitQuiz)
	courses.Post("/modules/complete", ctl.MarkModuleComplete)
	courses.Get("/progress", ctl.GetStatus)
}
