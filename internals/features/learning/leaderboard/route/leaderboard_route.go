package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"credilink_backend/internals/features/learning/leaderboard/controller"
)

// LeaderboardPublicRoutes: the ranked view is world-readable.
func LeaderboardPublicRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewLeaderboardController(db)
	api.Get("/leaderboard", ctl.Get)
}

// LeaderboardAdminRoutes: repair hook, mounted behind AuthJWT + AdminOnly.
func LeaderboardAdminRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewLeaderboardController(db)
	api.Post("/leaderboard/recompute/:user_id", ctl.Recompute)
}
