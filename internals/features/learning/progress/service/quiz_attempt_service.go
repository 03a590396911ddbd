package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	courseModel "credilink_backend/internals/features/courses/course/model"
	progressModel "credilink_backend/internals/features/learning/progress/model"
	helper "credilink_backend/internals/helpers"
	"credilink_backend/internals/helpers/apperr"
)

/* =========================================================
   SERVICE: module quiz completion
========================================================= */

type QuizAttemptService struct {
	DB *gorm.DB
}

func NewQuizAttemptService(db *gorm.DB) *QuizAttemptService {
	return &QuizAttemptService{DB: db}
}

type RecordQuizAttemptInput struct {
	UserID   string
	CourseID uuid.UUID
	ModuleID string

	// question index -> selected option index; must cover every question
	Answers map[int]int

	// 0 means: use the module's own threshold (or the 70 default)
	PassingScore int
}

type QuizAttemptResult struct {
	Score   int                       `json:"score"`
	Passed  bool                      `json:"passed"`
	Attempt progressModel.QuizAttempt `json:"attempt"`
}

// RecordQuizAttempt appends an immutable attempt to the per-module history,
// overwrites the module's current score (latest-attempt semantics), and on a
// passing score set-adds the module to the completed set.
func (s *QuizAttemptService) RecordQuizAttempt(ctx context.Context, in RecordQuizAttemptInput) (*QuizAttemptResult, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, apperr.InvalidArgument("user id is required")
	}
	if strings.TrimSpace(in.ModuleID) == "" {
		return nil, apperr.InvalidArgument("module id is required")
	}

	var result QuizAttemptResult
	now := time.Now().UTC()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progress, course, err := loadProgressAndCourse(tx, in.UserID, in.CourseID)
		if err != nil {
			return err
		}

		mod, ok := course.ModuleByID(in.ModuleID)
		if !ok {
			return apperr.Newf(apperr.KindInvalidArgument, "module %q does not belong to this course", in.ModuleID)
		}

		score, err := courseModel.ScoreQuiz(mod.Quiz.Questions, in.Answers)
		if err != nil {
			return err
		}

		threshold := in.PassingScore
		if threshold <= 0 {
			threshold = course.PassingScoreForModule(mod)
		}
		passed := score >= threshold

		attempt := progress.AppendQuizAttempt(in.ModuleID, progressModel.QuizAttempt{
			AttemptedAt: now,
			Score:       score,
			Answers:     in.Answers,
			Passed:      passed,
		})
		progress.SetModuleScore(in.ModuleID, score)
		if passed {
			progress.AddCompletedModule(in.ModuleID)
		}
		progress.Touch(now)

		result = QuizAttemptResult{Score: score, Passed: passed, Attempt: attempt}

		return tx.Model(progress).
			Select("progress_completed_modules", "progress_module_scores",
				"progress_quiz_attempts", "progress_last_accessed_at").
			Updates(progress).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkModuleComplete records a non-quiz ("watched") completion. Idempotent.
func (s *QuizAttemptService) MarkModuleComplete(ctx context.Context, userID string, courseID uuid.UUID, moduleID string) (*progressModel.ProgressModel, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.InvalidArgument("user id is required")
	}

	var out *progressModel.ProgressModel
	now := time.Now().UTC()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progress, course, err := loadProgressAndCourse(tx, userID, courseID)
		if err != nil {
			return err
		}
		if _, ok := course.ModuleByID(moduleID); !ok {
			return apperr.Newf(apperr.KindInvalidArgument, "module %q does not belong to this course", moduleID)
		}

		changed := progress.AddCompletedModule(moduleID)
		progress.Touch(now)
		out = progress

		if !changed {
			return tx.Model(progress).
				Update("progress_last_accessed_at", now).Error
		}
		return tx.Model(progress).
			Select("progress_completed_modules", "progress_last_accessed_at").
			Updates(progress).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// loadProgressAndCourse fetches the progress row plus its course, taking a
// row lock on the progress record. For mutation paths only; read paths use
// loadProgressAndCourseForRead so status polling never queues behind writers.
// Missing progress means the caller skipped enrollment.
func loadProgressAndCourse(tx *gorm.DB, userID string, courseID uuid.UUID) (*progressModel.ProgressModel, *courseModel.CourseModel, error) {
	return fetchProgressAndCourse(helper.LockForUpdate(tx), tx, userID, courseID)
}

// loadProgressAndCourseForRead is the lock-free variant for read paths.
func loadProgressAndCourseForRead(tx *gorm.DB, userID string, courseID uuid.UUID) (*progressModel.ProgressModel, *courseModel.CourseModel, error) {
	return fetchProgressAndCourse(tx, tx, userID, courseID)
}

func fetchProgressAndCourse(progressTx, tx *gorm.DB, userID string, courseID uuid.UUID) (*progressModel.ProgressModel, *courseModel.CourseModel, error) {
	var progress progressModel.ProgressModel
	if err := progressTx.
		First(&progress, "progress_user_id = ? AND progress_course_id = ?", userID, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("progress record not found: enroll in the course first")
		}
		return nil, nil, err
	}

	var course courseModel.CourseModel
	if err := tx.First(&course, "course_id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.NotFound("course not found")
		}
		return nil, nil, err
	}
	return &progress, &course, nil
}
