package dto

type RegisterRequest struct {
	ID       string `json:"id" validate:"required,min=4,max=128"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Type     string `json:"type" validate:"omitempty,oneof=student recruiter"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type WalletSignInRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,min=4,max=128"`
}
