package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	courseModel "credilink_backend/internals/features/courses/course/model"
	progressModel "credilink_backend/internals/features/learning/progress/model"
	"credilink_backend/internals/helpers/apperr"
)

/* =========================================================
   SERVICE: progress reads
========================================================= */

type ProgressQueryService struct {
	DB *gorm.DB
}

func NewProgressQueryService(db *gorm.DB) *ProgressQueryService {
	return &ProgressQueryService{DB: db}
}

// ProgressStatus is the learner-facing view of one enrollment: where they
// are, what is left, and whether the final test is unlocked.
type ProgressStatus struct {
	Progress        *progressModel.ProgressModel `json:"progress"`
	CourseTitle     string                       `json:"course_title"`
	TotalModules    int                          `json:"total_modules"`
	ModulesDone     int                          `json:"modules_done"`
	PercentComplete int                          `json:"percent_complete"`
	NextModuleID    string                       `json:"next_module_id,omitempty"`
	FinalTestReady  bool                         `json:"final_test_ready"`
}

func (s *ProgressQueryService) GetStatus(ctx context.Context, userID string, courseID uuid.UUID) (*ProgressStatus, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.InvalidArgument("user id is required")
	}

	tx := s.DB.WithContext(ctx)
	progress, course, err := loadProgressAndCourseForRead(tx, userID, courseID)
	if err != nil {
		return nil, err
	}
	return buildStatus(progress, course), nil
}

// ListByUser returns all enrollments for one user, most recently touched
// first, with per-course status attached.
func (s *ProgressQueryService) ListByUser(ctx context.Context, userID string) ([]ProgressStatus, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.InvalidArgument("user id is required")
	}

	var records []progressModel.ProgressModel
	if err := s.DB.WithContext(ctx).
		Where("progress_user_id = ?", userID).
		Order("progress_last_accessed_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []ProgressStatus{}, nil
	}

	courseIDs := make([]uuid.UUID, 0, len(records))
	for _, p := range records {
		courseIDs = append(courseIDs, p.ProgressCourseID)
	}
	var courses []courseModel.CourseModel
	if err := s.DB.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Find(&courses).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*courseModel.CourseModel, len(courses))
	for i := range courses {
		byID[courses[i].CourseID] = &courses[i]
	}

	out := make([]ProgressStatus, 0, len(records))
	for i := range records {
		course, ok := byID[records[i].ProgressCourseID]
		if !ok {
			continue // course removed; its progress rows are on their way out too
		}
		out = append(out, *buildStatus(&records[i], course))
	}
	return out, nil
}

func buildStatus(progress *progressModel.ProgressModel, course *courseModel.CourseModel) *ProgressStatus {
	modules := course.Modules()
	done := 0
	nextModuleID := ""
	for _, mod := range modules {
		if progress.HasCompletedModule(mod.ID) {
			done++
		} else if nextModuleID == "" {
			nextModuleID = mod.ID // modules are stored in order
		}
	}

	percent := 0
	if len(modules) > 0 {
		percent = done * 100 / len(modules)
	}

	return &ProgressStatus{
		Progress:        progress,
		CourseTitle:     course.CourseTitle,
		TotalModules:    len(modules),
		ModulesDone:     done,
		PercentComplete: percent,
		NextModuleID:    nextModuleID,
		FinalTestReady:  len(modules) > 0 && done == len(modules) && !progress.ProgressFinalTestPassed,
	}
}
