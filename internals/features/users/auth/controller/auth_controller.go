package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"credilink_backend/internals/features/users/auth/dto"
	"credilink_backend/internals/features/users/auth/service"
	userModel "credilink_backend/internals/features/users/user/model"
	helper "credilink_backend/internals/helpers"
)

type AuthController struct {
	Service  *service.AuthService
	Validate *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		Service:  service.NewAuthService(db),
		Validate: validator.New(),
	}
}

// POST /auth/register
func (ctl *AuthController) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	result, err := ctl.Service.Register(c.Context(), req.ID, req.Name, req.Email, req.Password, userModel.UserType(req.Type))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Account created", result)
}

// POST /auth/login
func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	result, err := ctl.Service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Logged in", result)
}

// POST /auth/google
func (ctl *AuthController) GoogleSignIn(c *fiber.Ctx) error {
	var req dto.GoogleSignInRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	result, err := ctl.Service.GoogleSignIn(c.Context(), req.IDToken)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Logged in with Google", result)
}

// POST /auth/wallet
func (ctl *AuthController) WalletSignIn(c *fiber.Ctx) error {
	var req dto.WalletSignInRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	result, err := ctl.Service.WalletSignIn(c.Context(), req.WalletAddress)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Logged in with wallet", result)
}
