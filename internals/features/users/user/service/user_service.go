package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"credilink_backend/internals/features/users/user/dto"
	userModel "credilink_backend/internals/features/users/user/model"
	"credilink_backend/internals/helpers/apperr"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) GetByID(ctx context.Context, userID string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := s.DB.WithContext(ctx).First(&user, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*userModel.UserModel, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["user_name"] = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		t := userModel.UserType(*req.Type)
		if !t.Valid() {
			return nil, apperr.InvalidArgument("invalid user type")
		}
		updates["user_type"] = t
	}
	if req.Skills != nil {
		updates["user_skills"] = datatypes.JSONSlice[string](req.Skills)
	}

	return s.applyUpdates(ctx, userID, updates)
}

// ConnectWallet links a wallet address to an existing (e.g. Google-auth)
// account so web3 features work under the same identity key.
func (s *UserService) ConnectWallet(ctx context.Context, userID, address string) (*userModel.UserModel, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperr.InvalidArgument("wallet address is required")
	}
	return s.applyUpdates(ctx, userID, map[string]interface{}{
		"user_wallet_address":    address,
		"user_is_web3_connected": true,
	})
}

func (s *UserService) SetImage(ctx context.Context, userID, imagePath string) (*userModel.UserModel, error) {
	return s.applyUpdates(ctx, userID, map[string]interface{}{"user_image": imagePath})
}

func (s *UserService) applyUpdates(ctx context.Context, userID string, updates map[string]interface{}) (*userModel.UserModel, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.DB.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetByID(ctx, userID)
}
