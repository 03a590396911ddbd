package dto

import (
	"time"

	userModel "credilink_backend/internals/features/users/user/model"
)

type UpdateProfileRequest struct {
	Name   *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Type   *string  `json:"type,omitempty" validate:"omitempty,oneof=student recruiter"`
	Skills []string `json:"skills,omitempty" validate:"omitempty,dive,min=1"`
}

type ConnectWalletRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,min=4,max=128"`
}

type UserProfileResponse struct {
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	Email            *string   `json:"email,omitempty"`
	Image            *string   `json:"image,omitempty"`
	Type             string    `json:"type"`
	WalletAddress    *string   `json:"wallet_address,omitempty"`
	IsWeb3Connected  bool      `json:"is_web3_connected"`
	EnrolledCourses  []string  `json:"enrolled_courses"`
	CompletedCourses []string  `json:"completed_courses"`
	Credentials      []string  `json:"credentials"`
	Skills           []string  `json:"skills"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewUserProfileResponse(m *userModel.UserModel) UserProfileResponse {
	return UserProfileResponse{
		UserID:           m.UserID,
		Name:             m.DisplayName(),
		Email:            m.UserEmail,
		Image:            m.UserImage,
		Type:             string(m.UserType),
		WalletAddress:    m.UserWalletAddress,
		IsWeb3Connected:  m.UserIsWeb3Connected,
		EnrolledCourses:  emptyIfNil(m.UserEnrolledCourses),
		CompletedCourses: emptyIfNil(m.UserCompletedCourses),
		Credentials:      emptyIfNil(m.UserCredentials),
		Skills:           emptyIfNil(m.UserSkills),
		CreatedAt:        m.CreatedAt,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
