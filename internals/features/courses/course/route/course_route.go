package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"credilink_backend/internals/features/courses/course/controller"
)

// CoursePublicRoutes: catalog reads, no auth required.
func CoursePublicRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewCourseController(db)

	courses := api.Group("/courses")
	courses.Get("/", ctl.List)
	courses.Get("/:id", ctl.GetByID)
}

// CourseAdminRoutes: catalog writes, mounted behind AuthJWT + AdminOnly.
func CourseAdminRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewCourseController(db)

	courses := api.Group("/courses")
	courses.Post("/", ctl.Create)
	courses.Put("/:id", ctl.Update)
	courses.Delete("/:id", ctl.Delete)
	courses.Post("/:id/cover", ctl.UploadCover)
}
