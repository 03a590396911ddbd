package service

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	credentialModel "credilink_backend/internals/features/learning/certificates/model"
	leaderboardModel "credilink_backend/internals/features/learning/leaderboard/model"
	progressModel "credilink_backend/internals/features/learning/progress/model"
	userModel "credilink_backend/internals/features/users/user/model"
	"credilink_backend/internals/helpers/apperr"
)

// PlaceholderName stands in when the user record behind an aggregate is
// missing; the leaderboard never fails the whole computation over one user.
const PlaceholderName = "Anonymous User"

/* =========================================================
   SERVICE: leaderboard aggregator
   Pure derived view: reads progress, never writes it.
========================================================= */

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// RecomputeEntry rebuilds one user's aggregates from their passed progress
// records and upserts the denormalized entry.
func (s *LeaderboardService) RecomputeEntry(ctx context.Context, userID string) (*leaderboardModel.LeaderboardEntryModel, error) {
	if userID == "" {
		return nil, apperr.InvalidArgument("user id is required")
	}
	db := s.DB.WithContext(ctx)

	var passed []progressModel.ProgressModel
	if err := db.
		Where("progress_user_id = ? AND progress_final_test_passed = ?", userID, true).
		Find(&passed).Error; err != nil {
		return nil, err
	}

	totalScore := 0
	for _, p := range passed {
		if p.ProgressFinalTestScore != nil {
			totalScore += *p.ProgressFinalTestScore
		}
	}

	var certCount int64
	if err := db.Model(&credentialModel.CredentialModel{}).
		Where("credential_user_id = ?", userID).
		Count(&certCount).Error; err != nil {
		return nil, err
	}

	entry := leaderboardModel.LeaderboardEntryModel{
		LeaderboardUserID:             userID,
		LeaderboardUserName:           PlaceholderName,
		LeaderboardCompletedCourses:   len(passed),
		LeaderboardTotalScore:         totalScore,
		LeaderboardEarnedCertificates: int(certCount),
	}

	var user userModel.UserModel
	switch err := db.First(&user, "user_id = ?", userID).Error; {
	case err == nil:
		entry.LeaderboardUserName = user.DisplayName()
		if user.UserImage != nil {
			entry.LeaderboardUserImage = *user.UserImage
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// keep the placeholder
	default:
		return nil, err
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "leaderboard_user_id"}},
		UpdateAll: true,
	}).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

/* =========================================================
   Ranked read: aggregates straight from progress records,
   so the view stays correct even when an entry upsert was
   missed. Rank is the 1-based sort position, never stored.
========================================================= */

type RankedEntry struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"user_id"`
	UserName         string `json:"user_name"`
	CompletedCourses int    `json:"completed_courses"`
	TotalScore       int    `json:"total_score"`
}

func (s *LeaderboardService) GetRankedLeaderboard(ctx context.Context, limit int) ([]RankedEntry, error) {
	db := s.DB.WithContext(ctx)

	var passed []progressModel.ProgressModel
	if err := db.
		Where("progress_final_test_passed = ?", true).
		Find(&passed).Error; err != nil {
		return nil, err
	}

	type agg struct {
		completed int
		total     int
	}
	byUser := make(map[string]*agg)
	order := make([]string, 0)
	for _, p := range passed {
		a, ok := byUser[p.ProgressUserID]
		if !ok {
			a = &agg{}
			byUser[p.ProgressUserID] = a
			order = append(order, p.ProgressUserID)
		}
		a.completed++
		if p.ProgressFinalTestScore != nil {
			a.total += *p.ProgressFinalTestScore
		}
	}

	entries := make([]RankedEntry, 0, len(byUser))
	for _, uid := range order {
		a := byUser[uid]
		entries = append(entries, RankedEntry{
			UserID:           uid,
			UserName:         PlaceholderName,
			CompletedCourses: a.completed,
			TotalScore:       a.total,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CompletedCourses != entries[j].CompletedCourses {
			return entries[i].CompletedCourses > entries[j].CompletedCourses
		}
		return entries[i].TotalScore > entries[j].TotalScore
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	// attach display names; a missing user keeps the placeholder
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	if len(ids) > 0 {
		var users []userModel.UserModel
		if err := db.Where("user_id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
		names := make(map[string]string, len(users))
		for i := range users {
			names[users[i].UserID] = users[i].DisplayName()
		}
		for i := range entries {
			if n, ok := names[entries[i].UserID]; ok {
				entries[i].UserName = n
			}
		}
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
