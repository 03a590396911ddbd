package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	credentialModel "credilink_backend/internals/features/learning/certificates/model"
	leaderboardModel "credilink_backend/internals/features/learning/leaderboard/model"
	progressModel "credilink_backend/internals/features/learning/progress/model"
	userModel "credilink_backend/internals/features/users/user/model"
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

	if err := db.AutoMigrate(
		&userModel.UserModel{},
		&progressModel.ProgressModel{},
		&credentialModel.CredentialModel{},
		&leaderboardModel.LeaderboardEntryModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPassedProgress(t *testing.T, db *gorm.DB, userID string, score int) {
	t.Helper()
	now := time.Now().UTC()
	p := progressModel.ProgressModel{
		ProgressUserID:          userID,
		ProgressCourseID:        uuid.New(),
		ProgressEnrolledAt:      now,
		ProgressLastAccessedAt:  now,
		ProgressFinalTestScore:  &score,
		ProgressFinalTestPassed: true,
		ProgressCompletedAt:     &now,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed progress: %v", err)
	}
}

func seedUser(t *testing.T, db *gorm.DB, userID, name string) {
	t.Helper()
	u := userModel.UserModel{UserID: userID, UserName: &name}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestRecomputeEntryAggregates(t *testing.T) {
	db := openTestDB(t)
	svc := NewLeaderboardService(db)
	ctx := context.Background()

	seedUser(t, db, "u1", "Ada")
	seedPassedProgress(t, db, "u1", 80)
	seedPassedProgress(t, db, "u1", 90)

	entry, err := svc.RecomputeEntry(ctx, "u1")
	if err != nil {
		t.Fatalf("RecomputeEntry: %v", err)
	}
	if entry.LeaderboardCompletedCourses != 2 || entry.LeaderboardTotalScore != 170 {
		t.Fatalf("entry = %+v, want completed=2 total=170", entry)
	}
	if entry.LeaderboardUserName != "Ada" {
		t.Fatalf("name = %q, want Ada", entry.LeaderboardUserName)
	}

	// another pass only grows the aggregates (monotonic under recompute)
	seedPassedProgress(t, db, "u1", 70)
	entry, err = svc.RecomputeEntry(ctx, "u1")
	if err != nil {
		t.Fatalf("RecomputeEntry: %v", err)
	}
	if entry.LeaderboardCompletedCourses != 3 || entry.LeaderboardTotalScore != 240 {
		t.Fatalf("entry = %+v, want completed=3 total=240", entry)
	}

	var count int64
	db.Model(&leaderboardModel.LeaderboardEntryModel{}).Count(&count)
	if count != 1 {
		t.Fatalf("entries = %d, want 1 upserted row", count)
	}
}

func TestRecomputeEntryMissingUserKeepsPlaceholder(t *testing.T) {
	db := openTestDB(t)
	svc := NewLeaderboardService(db)

	seedPassedProgress(t, db, "ghost", 75)
	entry, err := svc.RecomputeEntry(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("RecomputeEntry: %v", err)
	}
	if entry.LeaderboardUserName != PlaceholderName {
		t.Fatalf("name = %q, want %q", entry.LeaderboardUserName, PlaceholderName)
	}
}

func TestRankedLeaderboardOrdering(t *testing.T) {
	db := openTestDB(t)
	svc := NewLeaderboardService(db)
	ctx := context.Background()

	seedUser(t, db, "u1", "Ada")
	seedUser(t, db, "u2", "Grace")
	// u1: 1 course / 100; u2: 2 courses / 150; u3 (no user row): 1 course / 90
	seedPassedProgress(t, db, "u1", 100)
	seedPassedProgress(t, db, "u2", 75)
	seedPassedProgress(t, db, "u2", 75)
	seedPassedProgress(t, db, "u3", 90)

	entries, err := svc.GetRankedLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("GetRankedLeaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}

	// courses completed dominates score
	if entries[0].UserID != "u2" || entries[0].Rank != 1 {
		t.Fatalf("first = %+v, want u2 at rank 1", entries[0])
	}
	// same course count: higher total score first
	if entries[1].UserID != "u1" || entries[2].UserID != "u3" {
		t.Fatalf("order = %s,%s, want u1,u3", entries[1].UserID, entries[2].UserID)
	}
	if entries[1].UserName != "Ada" {
		t.Fatalf("name = %q, want Ada", entries[1].UserName)
	}
	if entries[2].UserName != PlaceholderName {
		t.Fatalf("missing user name = %q, want %q", entries[2].UserName, PlaceholderName)
	}

	// limit truncates after sorting
	top, err := svc.GetRankedLeaderboard(ctx, 1)
	if err != nil {
		t.Fatalf("GetRankedLeaderboard: %v", err)
	}
	if len(top) != 1 || top[0].UserID != "u2" {
		t.Fatalf("top = %+v, want just u2", top)
	}
}

func TestRankedLeaderboardEmpty(t *testing.T) {
	db := openTestDB(t)
	svc := NewLeaderboardService(db)

	entries, err := svc.GetRankedLeaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetRankedLeaderboard: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %d, want 0", len(entries))
	}
}
