package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"credilink_backend/internals/configs"
	userModel "credilink_backend/internals/features/users/user/model"
	"credilink_backend/internals/helpers/apperr"
)

const accessTTLDefault = 24 * time.Hour

/* =========================================================
   SERVICE: auth
   Every sign-in path resolves to one opaque identity key.
   First successful auth of an unknown identity creates the
   user record with the student defaults.
========================================================= */

type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

type AuthResult struct {
	User        *userModel.UserModel `json:"user"`
	AccessToken string               `json:"access_token"`
	IsAdmin     bool                 `json:"is_admin"`
}

func nowUTC() time.Time { return time.Now().UTC() }

func getJWTSecret() (string, error) {
	secret := strings.TrimSpace(configs.JWTSecret)
	if secret == "" {
		return "", apperr.New(apperr.KindInternal, "JWT_SECRET is not set")
	}
	return secret, nil
}

/* ==========================
   Email + password
========================== */

func (s *AuthService) Register(ctx context.Context, id, name, email, password string, userType userModel.UserType) (*AuthResult, error) {
	id = strings.TrimSpace(id)
	email = strings.TrimSpace(strings.ToLower(email))
	if id == "" || email == "" {
		return nil, apperr.InvalidArgument("id and email are required")
	}
	if len(password) < 8 {
		return nil, apperr.InvalidArgument("password must be at least 8 characters")
	}
	if userType == "" {
		userType = userModel.UserTypeStudent
	}
	if !userType.Valid() {
		return nil, apperr.InvalidArgument("invalid user type")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	hashStr := string(hash)

	user := userModel.UserModel{
		UserID:           id,
		UserName:         &name,
		UserEmail:        &email,
		UserType:         userType,
		UserPasswordHash: &hashStr,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("an account with this identity or email already exists")
		}
		return nil, err
	}
	return s.buildResult(&user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperr.InvalidArgument("email and password are required")
	}

	var user userModel.UserModel
	if err := s.DB.WithContext(ctx).First(&user, "user_email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, err
	}
	if user.UserPasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.UserPasswordHash), []byte(password)) != nil {
		return nil, apperr.InvalidArgument("invalid credentials")
	}
	return s.buildResult(&user)
}

/* ==========================
   Google sign-in
========================== */

func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string) (*AuthResult, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, apperr.InvalidArgument("id token is required")
	}
	clientID := strings.TrimSpace(configs.GoogleClientID)
	if clientID == "" {
		return nil, apperr.New(apperr.KindInternal, "GOOGLE_CLIENT_ID is not set")
	}

	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{clientID}); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidArgument, "invalid Google id token", err)
	}
	claims, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidArgument, "undecodable Google id token", err)
	}

	email := strings.ToLower(claims.Email)
	user, err := s.getOrCreate(ctx, claims.Sub, func() userModel.UserModel {
		return userModel.UserModel{
			UserID:    claims.Sub,
			UserName:  optional(claims.Name),
			UserEmail: optional(email),
			UserImage: optional(claims.Picture),
			UserType:  userModel.UserTypeStudent,
		}
	})
	if err != nil {
		return nil, err
	}
	return s.buildResult(user)
}

/* ==========================
   Wallet sign-in
   Signature verification belongs to the wallet provider; the
   backend only receives the already-verified address as an
   opaque identity key.
========================== */

func (s *AuthService) WalletSignIn(ctx context.Context, address string) (*AuthResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperr.InvalidArgument("wallet address is required")
	}

	user, err := s.getOrCreate(ctx, address, func() userModel.UserModel {
		return userModel.UserModel{
			UserID:              address,
			UserType:            userModel.UserTypeStudent,
			UserWalletAddress:   &address,
			UserIsWeb3Connected: true,
		}
	})
	if err != nil {
		return nil, err
	}
	return s.buildResult(user)
}

/* ==========================
   Internals
========================== */

func (s *AuthService) getOrCreate(ctx context.Context, id string, build func() userModel.UserModel) (*userModel.UserModel, error) {
	var user userModel.UserModel
	err := s.DB.WithContext(ctx).First(&user, "user_id = ?", id).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = build()
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// concurrent first sign-in
			if err := s.DB.WithContext(ctx).First(&user, "user_id = ?", id).Error; err != nil {
				return nil, err
			}
			return &user, nil
		}
		return nil, err
	}
	log.Printf("[INFO] auth: created user record %s", id)
	return &user, nil
}

func (s *AuthService) buildResult(user *userModel.UserModel) (*AuthResult, error) {
	token, err := s.CreateAccessToken(user)
	if err != nil {
		return nil, err
	}
	isAdmin := user.UserEmail != nil && configs.IsAdminEmail(*user.UserEmail)
	return &AuthResult{User: user, AccessToken: token, IsAdmin: isAdmin}, nil
}

func (s *AuthService) CreateAccessToken(user *userModel.UserModel) (string, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"id":        user.UserID,
		"sub":       user.UserID,
		"user_type": string(user.UserType),
		"iat":       nowUTC().Unix(),
		"exp":       nowUTC().Add(accessTTLDefault).Unix(),
	}
	if user.UserEmail != nil {
		claims["email"] = *user.UserEmail
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return "", apperr.Internal(err)
	}
	return signed, nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
