package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"credilink_backend/internals/features/users/user/dto"
	"credilink_backend/internals/features/users/user/service"
	helper "credilink_backend/internals/helpers"
	middleware "credilink_backend/internals/middlewares/auth"
)

type UserController struct {
	Service  *service.UserService
	Validate *validator.Validate
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{
		Service:  service.NewUserService(db),
		Validate: validator.New(),
	}
}

// GET /users/me
func (ctl *UserController) Me(c *fiber.Ctx) error {
	user, err := ctl.Service.GetByID(c.Context(), middleware.UserID(c))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Profile fetched", dto.NewUserProfileResponse(user))
}

// PUT /users/me
func (ctl *UserController) UpdateMe(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	user, err := ctl.Service.UpdateProfile(c.Context(), middleware.UserID(c), &req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Profile updated", dto.NewUserProfileResponse(user))
}

// POST /users/me/wallet
func (ctl *UserController) ConnectWallet(c *fiber.Ctx) error {
	var req dto.ConnectWalletRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	user, err := ctl.Service.ConnectWallet(c.Context(), middleware.UserID(c), req.WalletAddress)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Wallet connected", dto.NewUserProfileResponse(user))
}

// POST /users/me/image
func (ctl *UserController) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "image file is required")
	}

	path, err := helper.SaveWebPUpload("users", fileHeader)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	user, err := ctl.Service.SetImage(c.Context(), middleware.UserID(c), path)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Image uploaded", fiber.Map{"image": user.UserImage})
}

// GET /users/:id: public recruiter-facing profile
func (ctl *UserController) GetPublic(c *fiber.Ctx) error {
	user, err := ctl.Service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	resp := dto.NewUserProfileResponse(user)
	resp.Email = nil // not exposed on public profiles
	return helper.Success(c, "Profile fetched", resp)
}
