package model

import "time"

/* =============================================================================
   MODEL: leaderboard_entries
   Derived aggregate: always rebuildable from passed progress records.
   Rank is computed at read time by sorting, never stored.
============================================================================= */
type LeaderboardEntryModel struct {
	LeaderboardUserID    string `json:"leaderboard_user_id" gorm:"column:leaderboard_user_id;type:varchar(128);primaryKey"`
	LeaderboardUserName  string `json:"leaderboard_user_name" gorm:"column:leaderboard_user_name;type:varchar(120);not null"`
	LeaderboardUserImage string `json:"leaderboard_user_image" gorm:"column:leaderboard_user_image;type:text"`

	LeaderboardCompletedCourses   int `json:"leaderboard_completed_courses" gorm:"column:leaderboard_completed_courses;not null;default:0"`
	LeaderboardTotalScore         int `json:"leaderboard_total_score" gorm:"column:leaderboard_total_score;not null;default:0"`
	LeaderboardEarnedCertificates int `json:"leaderboard_earned_certificates" gorm:"column:leaderboard_earned_certificates;not null;default:0"`

	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaderboardEntryModel) TableName() string { return "leaderboard_entries" }
