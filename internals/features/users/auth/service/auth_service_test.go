package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"credilink_backend/internals/configs"
	userModel "credilink_backend/internals/features/users/user/model"
	"credilink_backend/internals/helpers/apperr"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&userModel.UserModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func withSecret(t *testing.T) {
	t.Helper()
	old := configs.JWTSecret
	configs.JWTSecret = "test-secret"
	t.Cleanup(func() { configs.JWTSecret = old })
}

func TestRegisterAndLogin(t *testing.T) {
	withSecret(t)
	db := openTestDB(t)
	svc := NewAuthService(db)
	ctx := context.Background()

	result, err := svc.Register(ctx, "uid-1", "Ada", "Ada@Example.com", "s3cret-pass", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.User.UserType != userModel.UserTypeStudent {
		t.Fatalf("type = %q, want default student", result.User.UserType)
	}
	if result.AccessToken == "" {
		t.Fatal("no access token issued")
	}
	if result.User.UserPasswordHash == nil || *result.User.UserPasswordHash == "s3cret-pass" {
		t.Fatal("password must be stored hashed")
	}

	// email is normalized on both ends
	login, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.UserID != "uid-1" {
		t.Fatalf("login user = %q, want uid-1", login.User.UserID)
	}

	if _, err := svc.Login(ctx, "ada@example.com", "wrong-pass"); !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("bad password: err = %v, want InvalidArgument", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "s3cret-pass"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("unknown email: err = %v, want NotFound", err)
	}
}

func TestRegisterRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	withSecret(t)
	db := openTestDB(t)
	svc := NewAuthService(db)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "uid-1", "Ada", "ada@example.com", "s3cret-pass", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "uid-2", "Eve", "ada@example.com", "s3cret-pass", ""); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("duplicate email: err = %v, want Conflict", err)
	}
	if _, err := svc.Register(ctx, "uid-3", "Bob", "bob@example.com", "short", ""); !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("weak password: err = %v, want InvalidArgument", err)
	}
	if _, err := svc.Register(ctx, "uid-4", "Mal", "mal@example.com", "s3cret-pass", "wizard"); !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("bad type: err = %v, want InvalidArgument", err)
	}
}

func TestWalletSignInIsIdempotent(t *testing.T) {
	withSecret(t)
	db := openTestDB(t)
	svc := NewAuthService(db)
	ctx := context.Background()

	first, err := svc.WalletSignIn(ctx, "0xDEADBEEF")
	if err != nil {
		t.Fatalf("WalletSignIn: %v", err)
	}
	if !first.User.UserIsWeb3Connected || first.User.UserWalletAddress == nil {
		t.Fatal("wallet identity must be web3-connected")
	}

	second, err := svc.WalletSignIn(ctx, "0xDEADBEEF")
	if err != nil {
		t.Fatalf("WalletSignIn (repeat): %v", err)
	}
	if second.User.UserID != first.User.UserID {
		t.Fatal("repeat sign-in must resolve to the same user")
	}

	var count int64
	db.Model(&userModel.UserModel{}).Count(&count)
	if count != 1 {
		t.Fatalf("users = %d, want 1", count)
	}
}

func TestAccessTokenClaims(t *testing.T) {
	withSecret(t)
	svc := NewAuthService(nil)
	email := "ada@example.com"

	signed, err := svc.CreateAccessToken(&userModel.UserModel{
		UserID:    "uid-1",
		UserEmail: &email,
		UserType:  userModel.UserTypeStudent,
	})
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	tok, err := jwt.Parse(signed, func(t *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["id"] != "uid-1" || claims["sub"] != "uid-1" {
		t.Fatalf("claims = %v, want id/sub uid-1", claims)
	}
	if claims["email"] != email || claims["user_type"] != "student" {
		t.Fatalf("claims = %v, want email and user_type", claims)
	}
}
