package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"credilink_backend/internals/features/users/user/controller"
)

// UserPublicRoutes: recruiter-facing profile reads.
func UserPublicRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewUserController(db)
	api.Get("/users/:id", ctl.GetPublic)
}

// UserRoutes: self-service profile, mounted behind AuthJWT.
func UserRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewUserController(db)

	me := api.Group("/users/me")
	me.Get("/", ctl.Me)
	me.Put("/", ctl.UpdateMe)
	me.Post("/wallet", ctl.ConnectWallet)
	me.Post("/image", ctl.UploadImage)
}
