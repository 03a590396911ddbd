package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"credilink_backend/internals/features/learning/certificates/dto"
	"credilink_backend/internals/features/learning/certificates/service"
	helper "credilink_backend/internals/helpers"
	middleware "credilink_backend/internals/middlewares/auth"
)

type CertificateController struct {
	Certificates *service.CertificateService
	FinalTest    *service.FinalTestService
	Validate     *validator.Validate
}

func NewCertificateController(db *gorm.DB) *CertificateController {
	return &CertificateController{
		Certificates: service.NewCertificateService(db),
		FinalTest:    service.NewFinalTestService(db),
		Validate:     validator.New(),
	}
}

// POST /courses/:course_id/final-test
func (ctl *CertificateController) SubmitFinalTest(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("course_id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid course id")
	}

	var req dto.SubmitFinalTestRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	result, err := ctl.FinalTest.SubmitFinalTest(c.Context(), middleware.UserID(c), courseID, req.Answers)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Final test graded", result)
}

// GET /certificates/:id: public verification lookup, no auth.
func (ctl *CertificateController) GetByID(c *fiber.Ctx) error {
	credentialID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid certificate id")
	}

	credential, err := ctl.Certificates.GetByID(c.Context(), credentialID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Certificate fetched", dto.NewCredentialResponse(credential))
}

// GET /certificates
func (ctl *CertificateController) ListMine(c *fiber.Ctx) error {
	credentials, err := ctl.Certificates.ListByUser(c.Context(), middleware.UserID(c))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Certificates fetched", dto.NewCredentialResponses(credentials))
}

// GET /users/:id/certificates: recruiter-facing list.
func (ctl *CertificateController) ListByUser(c *fiber.Ctx) error {
	credentials, err := ctl.Certificates.ListByUser(c.Context(), c.Params("id"))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Certificates fetched", dto.NewCredentialResponses(credentials))
}

// POST /certificates/migrate: one-shot legacy table copy (admin).
func (ctl *CertificateController) MigrateLegacy(c *fiber.Ctx) error {
	migrated, err := ctl.Certificates.MigrateLegacyCertificates(c.Context())
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Legacy certificates migrated", fiber.Map{"migrated": migrated})
}
