package database

import (
	"log"

	"gorm.io/gorm"

	courseModel "credilink_backend/internals/features/courses/course/model"
	credentialModel "credilink_backend/internals/features/learning/certificates/model"
	leaderboardModel "credilink_backend/internals/features/learning/leaderboard/model"
	progressModel "credilink_backend/internals/features/learning/progress/model"
	userModel "credilink_backend/internals/features/users/user/model"
)

// AutoMigrate keeps the schema in sync; indexes (including the uniqueness
// guards on progress and credentials) come from the model tags.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel.UserModel{},
		&courseModel.CourseModel{},
		&progressModel.ProgressModel{},
		&credentialModel.CredentialModel{},
		&leaderboardModel.LeaderboardEntryModel{},
	); err != nil {
		return err
	}
	log.Println("✅ Schema migrated")
	return nil
}
