package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"credilink_backend/internals/configs"
	certificateRoute "credilink_backend/internals/features/learning/certificates/route"
	leaderboardRoute "credilink_backend/internals/features/learning/leaderboard/route"
	progressRoute "credilink_backend/internals/features/learning/progress/route"

	courseRoute "credilink_backend/internals/features/courses/course/route"
	quizgenRoute "credilink_backend/internals/features/quizgen/route"
	authRoute "credilink_backend/internals/features/users/auth/route"
	userRoute "credilink_backend/internals/features/users/user/route"
	middleware "credilink_backend/internals/middlewares/auth"
)

/* =============================================================================
   ROUTE INDEX
   /api     : public surface (catalog, verification, leaderboard, auth)
   /api/u   : authenticated learner surface (AuthJWT)
   /api/a   : admin surface (AuthJWT + AdminOnly)
============================================================================= */

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	api := app.Group("/api")

	// ---------- public ----------
	authRoute.AuthRoutes(api, db)
	courseRoute.CoursePublicRoutes(api, db)
	certificateRoute.CertificatePublicRoutes(api, db)
	leaderboardRoute.LeaderboardPublicRoutes(api, db)
	userRoute.UserPublicRoutes(api, db)

	// ---------- authenticated ----------
	authed := api.Group("/u", middleware.AuthJWT(middleware.AuthJWTOpts{
		Secret:              configs.JWTSecret,
		AllowCookieFallback: true,
	}))
	userRoute.UserRoutes(authed, db)
	progressRoute.ProgressRoutes(authed, db)
	certificateRoute.CertificateRoutes(authed, db)
	quizgenRoute.QuizGenRoutes(authed, db)

	// ---------- admin ----------
	admin := api.Group("/a",
		middleware.AuthJWT(middleware.AuthJWTOpts{Secret: configs.JWTSecret}),
		middleware.AdminOnly(),
	)
	courseRoute.CourseAdminRoutes(admin, db)
	certificateRoute.CertificateAdminRoutes(admin, db)
	leaderboardRoute.LeaderboardAdminRoutes(admin, db)
	quizgenRoute.QuizGenAdminRoutes(admin, db)
}
