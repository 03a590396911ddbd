package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FinalTestAttemptKey is the reserved key in the attempt-history map used to
// log final-test submissions alongside per-module quiz attempts.
const FinalTestAttemptKey = "final"

/* =============================================================================
   QuizAttempt: immutable once appended to the history
============================================================================= */
type QuizAttempt struct {
	AttemptedAt   time.Time   `json:"attemptedAt"`
	Score         int         `json:"score"`
	Answers       map[int]int `json:"answers"` // question index -> selected option index
	Passed        bool        `json:"passed"`
	AttemptNumber int         `json:"attemptNumber"` // 1-based per module per user
}

/* =============================================================================
   MODEL: user_course_progress
   One row per (user, course); the authoritative completion state.
============================================================================= */
type ProgressModel struct {
	ProgressID       uuid.UUID `json:"progress_id" gorm:"column:progress_id;type:uuid;primaryKey"`
	ProgressUserID   string    `json:"progress_user_id" gorm:"column:progress_user_id;type:varchar(128);not null;uniqueIndex:uq_progress_user_course,priority:1"`
	ProgressCourseID uuid.UUID `json:"progress_course_id" gorm:"column:progress_course_id;type:uuid;not null;uniqueIndex:uq_progress_user_course,priority:2;index:idx_progress_course"`

	ProgressEnrolledAt     time.Time `json:"progress_enrolled_at" gorm:"column:progress_enrolled_at;not null"`
	ProgressLastAccessedAt time.Time `json:"progress_last_accessed_at" gorm:"column:progress_last_accessed_at;not null"`

	ProgressCompletedModules datatypes.JSONSlice[string]                    `json:"progress_completed_modules" gorm:"column:progress_completed_modules"`
	ProgressModuleScores     datatypes.JSONType[map[string]int]             `json:"progress_module_scores" gorm:"column:progress_module_scores"`
	ProgressQuizAttempts     datatypes.JSONType[map[string][]QuizAttempt]   `json:"progress_quiz_attempts" gorm:"column:progress_quiz_attempts"`

	ProgressFinalTestScore  *int       `json:"progress_final_test_score,omitempty" gorm:"column:progress_final_test_score"`
	ProgressFinalTestPassed bool       `json:"progress_final_test_passed" gorm:"column:progress_final_test_passed;not null;default:false;index"`
	ProgressCertificateID   *uuid.UUID `json:"progress_certificate_id,omitempty" gorm:"column:progress_certificate_id;type:uuid"`
	ProgressCompletedAt     *time.Time `json:"progress_completed_at,omitempty" gorm:"column:progress_completed_at"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (ProgressModel) TableName() string { return "user_course_progress" }

func (m *ProgressModel) BeforeCreate(_ *gorm.DB) error {
	if m.ProgressID == uuid.Nil {
		m.ProgressID = uuid.New()
	}
	return nil
}

/* ===================================================================
   Helper methods: completed modules are a set, attempts append-only
=================================================================== */

func (m *ProgressModel) HasCompletedModule(moduleID string) bool {
	for _, id := range m.ProgressCompletedModules {
		if id == moduleID {
			return true
		}
	}
	return false
}

// AddCompletedModule applies set semantics; reports whether it changed.
func (m *ProgressModel) AddCompletedModule(moduleID string) bool {
	if m.HasCompletedModule(moduleID) {
		return false
	}
	m.ProgressCompletedModules = append(m.ProgressCompletedModules, moduleID)
	return true
}

// HasCompletedAll reports whether every given module id is in the completed
// set: the final-test gate.
func (m *ProgressModel) HasCompletedAll(moduleIDs []string) bool {
	for _, id := range moduleIDs {
		if !m.HasCompletedModule(id) {
			return false
		}
	}
	return true
}

// SetModuleScore overwrites the current ("latest attempt") score.
func (m *ProgressModel) SetModuleScore(moduleID string, score int) {
	scores := m.ProgressModuleScores.Data()
	if scores == nil {
		scores = make(map[string]int)
	}
	scores[moduleID] = score
	m.ProgressModuleScores = datatypes.NewJSONType(scores)
}

func (m *ProgressModel) ModuleScore(moduleID string) (int, bool) {
	score, ok := m.ProgressModuleScores.Data()[moduleID]
	return score, ok
}

// AppendQuizAttempt records a new attempt; history is never rewritten. The
// attempt number is assigned here: previous attempts for the module + 1.
func (m *ProgressModel) AppendQuizAttempt(moduleID string, attempt QuizAttempt) QuizAttempt {
	history := m.ProgressQuizAttempts.Data()
	if history == nil {
		history = make(map[string][]QuizAttempt)
	}
	attempt.AttemptNumber = len(history[moduleID]) + 1
	history[moduleID] = append(history[moduleID], attempt)
	m.ProgressQuizAttempts = datatypes.NewJSONType(history)
	return attempt
}

func (m *ProgressModel) AttemptsFor(moduleID string) []QuizAttempt {
	return m.ProgressQuizAttempts.Data()[moduleID]
}

func (m *ProgressModel) Touch(now time.Time) {
	m.ProgressLastAccessedAt = now
}
