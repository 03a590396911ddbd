package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	courseModel "credilink_backend/internals/features/courses/course/model"
	progressModel "credilink_backend/internals/features/learning/progress/model"
	userModel "credilink_backend/internals/features/users/user/model"
	helper "credilink_backend/internals/helpers"
	"credilink_backend/internals/helpers/apperr"
)

/* =========================================================
   SERVICE: enrollment
   Viewing any module implies EnsureEnrolled was called first:
   auto-enrollment is an explicit precondition, not a hidden
   side effect of navigation.
========================================================= */

type EnrollmentService struct {
	DB *gorm.DB
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{DB: db}
}

// EnsureEnrolled is idempotent: the first call creates the missing user
// record, the progress record, the user's enrollment-list entry and bumps
// the course counter exactly once; repeat calls only refresh last-accessed.
func (s *EnrollmentService) EnsureEnrolled(ctx context.Context, userID string, courseID uuid.UUID) (*progressModel.ProgressModel, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.InvalidArgument("user id is required")
	}
	if courseID == uuid.Nil {
		return nil, apperr.InvalidArgument("course id is required")
	}

	var progress progressModel.ProgressModel
	now := time.Now().UTC()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course courseModel.CourseModel
		if err := tx.First(&course, "course_id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("course not found")
			}
			return err
		}

		// A user record must exist before its progress record. Unknown
		// identities reaching enrollment are wallet users who skipped the
		// regular signup path. The row lock serializes concurrent writers
		// of the user's jsonb lists.
		var user userModel.UserModel
		if err := helper.LockForUpdate(tx).First(&user, "user_id = ?", userID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			log.Printf("[INFO] enrollment: creating user record for wallet identity %s", userID)
			user = userModel.UserModel{
				UserID:              userID,
				UserType:            userModel.UserTypeStudent,
				UserWalletAddress:   &userID,
				UserIsWeb3Connected: true,
			}
			// ON CONFLICT keeps the transaction healthy when a concurrent
			// first access inserts the same identity; a plain unique
			// violation would poison the rest of the transaction on
			// postgres.
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				if err := helper.LockForUpdate(tx).First(&user, "user_id = ?", userID).Error; err != nil {
					return err
				}
			}
		}

		if err := helper.LockForUpdate(tx).
			First(&progress, "progress_user_id = ? AND progress_course_id = ?", userID, courseID).Error; err == nil {
			// already enrolled: only refresh last-accessed
			progress.Touch(now)
			return tx.Model(&progress).
				Update("progress_last_accessed_at", now).Error
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		created, err := createProgressOrAdopt(tx, &progress, userID, courseID, now)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}

		// one-time side effects of a new enrollment
		if err := tx.Model(&course).
			UpdateColumn("course_enrolled_count", gorm.Expr("course_enrolled_count + 1")).Error; err != nil {
			return err
		}
		if user.AddEnrolledCourse(courseID.String()) {
			if err := tx.Model(&user).
				Update("user_enrolled_courses", user.UserEnrolledCourses).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// createProgressOrAdopt inserts the progress row, or adopts the row a
// concurrent first access created. ON CONFLICT DO NOTHING avoids the unique
// violation that would poison the surrounding transaction on postgres, and
// RowsAffected tells the two outcomes apart.
func createProgressOrAdopt(tx *gorm.DB, progress *progressModel.ProgressModel, userID string, courseID uuid.UUID, now time.Time) (bool, error) {
	*progress = progressModel.ProgressModel{
		ProgressUserID:         userID,
		ProgressCourseID:       courseID,
		ProgressEnrolledAt:     now,
		ProgressLastAccessedAt: now,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "progress_user_id"}, {Name: "progress_course_id"}},
		DoNothing: true,
	}).Create(progress)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// lost a race with a concurrent first access: that writer already did
	// the one-time mutations, so only refresh last-accessed
	if err := tx.First(progress,
		"progress_user_id = ? AND progress_course_id = ?", userID, courseID).Error; err != nil {
		return false, err
	}
	progress.Touch(now)
	if err := tx.Model(progress).
		Update("progress_last_accessed_at", now).Error; err != nil {
		return false, err
	}
	return false, nil
}
