package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	courseModel "credilink_backend/internals/features/courses/course/model"
	credentialModel "credilink_backend/internals/features/learning/certificates/model"
	leaderboardService "credilink_backend/internals/features/learning/leaderboard/service"
	progressModel "credilink_backend/internals/features/learning/progress/model"
	userModel "credilink_backend/internals/features/users/user/model"
	helper "credilink_backend/internals/helpers"
	"credilink_backend/internals/helpers/apperr"
)

/* =========================================================
   SERVICE: final test & certification
   Issuance is at-most-once per (user, course): guarded by the
   in-transaction certificate check plus the unique index on
   credentials(user, course).
========================================================= */

type FinalTestService struct {
	DB          *gorm.DB
	Leaderboard *leaderboardService.LeaderboardService
}

func NewFinalTestService(db *gorm.DB) *FinalTestService {
	return &FinalTestService{
		DB:          db,
		Leaderboard: leaderboardService.NewLeaderboardService(db),
	}
}

type FinalTestResult struct {
	Score         int        `json:"score"`
	Passed        bool       `json:"passed"`
	CertificateID *uuid.UUID `json:"certificate_id,omitempty"`
}

// SubmitFinalTest grades the course-wide test. The test is gated on every
// course module being completed. A passing submission issues the credential
// and finalizes the progress record in one transaction; resubmitting after a
// pass returns the existing certificate unchanged.
func (s *FinalTestService) SubmitFinalTest(ctx context.Context, userID string, courseID uuid.UUID, answers map[int]int) (*FinalTestResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.InvalidArgument("user id is required")
	}

	var result FinalTestResult
	now := time.Now().UTC()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var progress progressModel.ProgressModel
		if err := helper.LockForUpdate(tx).
			First(&progress, "progress_user_id = ? AND progress_course_id = ?", userID, courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("progress record not found: enroll in the course first")
			}
			return err
		}

		var course courseModel.CourseModel
		if err := tx.First(&course, "course_id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("course not found")
			}
			return err
		}

		// double submission (page refresh, retry): converge on the first
		// issuance without touching anything
		if progress.ProgressCertificateID != nil {
			score := 0
			if progress.ProgressFinalTestScore != nil {
				score = *progress.ProgressFinalTestScore
			}
			result = FinalTestResult{Score: score, Passed: true, CertificateID: progress.ProgressCertificateID}
			return nil
		}

		if !progress.HasCompletedAll(course.ModuleIDs()) {
			return apperr.PreconditionFailed("modules incomplete")
		}

		finalTest := course.FinalTestData()
		score, err := courseModel.ScoreQuiz(finalTest.Questions, answers)
		if err != nil {
			return err
		}
		passed := score >= course.FinalTestPassingScore()

		// final-test submissions share the attempt history under a
		// reserved key, symmetric with module quizzes
		progress.AppendQuizAttempt(progressModel.FinalTestAttemptKey, progressModel.QuizAttempt{
			AttemptedAt: now,
			Score:       score,
			Answers:     answers,
			Passed:      passed,
		})
		progress.ProgressFinalTestScore = &score
		progress.Touch(now)

		if !passed {
			result = FinalTestResult{Score: score, Passed: false}
			return tx.Model(&progress).
				Select("progress_final_test_score", "progress_quiz_attempts", "progress_last_accessed_at").
				Updates(&progress).Error
		}

		credential, err := s.issueCredential(tx, &course, userID, now)
		if err != nil {
			return err
		}

		progress.ProgressFinalTestPassed = true
		progress.ProgressCertificateID = &credential.CredentialID
		progress.ProgressCompletedAt = &now
		if err := tx.Model(&progress).
			Select("progress_final_test_score", "progress_final_test_passed",
				"progress_certificate_id", "progress_completed_at",
				"progress_quiz_attempts", "progress_last_accessed_at").
			Updates(&progress).Error; err != nil {
			return err
		}

		if err := s.appendToUserRecord(tx, userID, courseID.String(), credential.CredentialID.String()); err != nil {
			return err
		}

		result = FinalTestResult{Score: score, Passed: true, CertificateID: &credential.CredentialID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Derived view: a failed recompute never fails the submission: the
	// aggregate is rebuildable from progress records at any time.
	if result.Passed {
		if _, err := s.Leaderboard.RecomputeEntry(ctx, userID); err != nil {
			log.Printf("[ERROR] leaderboard recompute for %s failed: %v", userID, err)
		}
	}
	return &result, nil
}

// issueCredential creates the credential row, or adopts the row a concurrent
// passing submission created first (unique index on user+course).
func (s *FinalTestService) issueCredential(tx *gorm.DB, course *courseModel.CourseModel, userID string, now time.Time) (*credentialModel.CredentialModel, error) {
	skills := course.ModuleTitles()
	if len(skills) == 0 {
		skills = credentialModel.DefaultSkills
	}
	txHash := placeholderTxHash()

	credential := credentialModel.CredentialModel{
		CredentialUserID:     userID,
		CredentialCourseID:   course.CourseID,
		CredentialCourseName: course.CourseTitle,
		CredentialIssueDate:  now,
		CredentialSkills:     skills,
		CredentialVerified:   true,
		CredentialTxHash:     &txHash,
		CredentialIssuer:     credentialModel.IssuerName,
		CredentialIssuerID:   credentialModel.IssuerID,
	}
	// ON CONFLICT DO NOTHING instead of a bare insert: a unique violation
	// would poison the surrounding transaction on postgres, leaving nothing
	// to re-read the winner's row with.
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "credential_user_id"}, {Name: "credential_course_id"}},
		DoNothing: true,
	}).Create(&credential)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var existing credentialModel.CredentialModel
		if err := tx.First(&existing,
			"credential_user_id = ? AND credential_course_id = ?", userID, course.CourseID).Error; err != nil {
			return nil, apperr.Wrap(apperr.KindConflict, "duplicate certificate issuance detected", err)
		}
		return &existing, nil
	}
	return &credential, nil
}

// appendToUserRecord mirrors the certification onto the user document:
// credential list and completed-course list (set semantics).
func (s *FinalTestService) appendToUserRecord(tx *gorm.DB, userID, courseID, credentialID string) error {
	var user userModel.UserModel
	if err := helper.LockForUpdate(tx).First(&user, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// enrollment creates the user; treat absence as data loss, not
			// a reason to drop the certification
			log.Printf("[WARN] user record %s missing during certification", userID)
			return nil
		}
		return err
	}

	user.AddCredential(credentialID)
	user.AddCompletedCourse(courseID)
	return tx.Model(&user).
		Select("user_credentials", "user_completed_courses").
		Updates(&user).Error
}

// placeholderTxHash stands in for the on-chain anchor until the credential
// is actually published; verification services treat it as opaque.
func placeholderTxHash() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		u := uuid.New()
		return "0x" + hex.EncodeToString(u[:])
	}
	return "0x" + hex.EncodeToString(b)
}
