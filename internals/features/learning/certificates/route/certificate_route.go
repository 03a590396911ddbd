package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"credilink_backend/internals/features/learning/certificates/controller"
)

// CertificatePublicRoutes: verification lookups usable by recruiters and
// third parties without an account.
func CertificatePublicRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewCertificateController(db)

	api.Get("/certificates/:id", ctl.GetByID)
	api.Get("/users/:id/certificates", ctl.ListByUser)
}

// CertificateRoutes: final test + own certificates, mounted behind AuthJWT.
func CertificateRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewCertificateController(db)

	api.Post("/courses/:course_id/final-test", ctl.SubmitFinalTest)
	api.Get("/certificates", ctl.ListMine)
}

// CertificateAdminRoutes: legacy migration, mounted behind AuthJWT + AdminOnly.
func CertificateAdminRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewCertificateController(db)

	api.Post("/certificates/migrate", ctl.MigrateLegacy)
}
