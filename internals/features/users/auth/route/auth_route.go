package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"credilink_backend/internals/features/users/auth/controller"
	"credilink_backend/internals/middlewares"
)

// AuthRoutes: public sign-in surface with per-endpoint rate limits.
func AuthRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewAuthController(db)

	auth := api.Group("/auth")
	auth.Post("/register", middlewares.RegisterRateLimiter(), ctl.Register)
	auth.Post("/login", middlewares.LoginRateLimiter(), ctl.Login)
	auth.Post("/google", middlewares.LoginRateLimiter(), ctl.GoogleSignIn)
	auth.Post("/wallet", middlewares.LoginRateLimiter(), ctl.WalletSignIn)
}
