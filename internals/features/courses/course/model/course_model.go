package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultPassingScore applies when a module quiz or final test does not set
// its own threshold.
const DefaultPassingScore = 70

/* =============================================================================
   Embedded document types (stored as jsonb on the course row)
============================================================================= */

type QuizQuestion struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	Points             int      `json:"points,omitempty"`
	Explanation        string   `json:"explanation,omitempty"`
}

type ModuleQuiz struct {
	Questions    []QuizQuestion `json:"questions"`
	PassingScore *int           `json:"passingScore,omitempty"`
}

type CourseModule struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	VideoURL    string     `json:"videoUrl,omitempty"`
	DurationMin int        `json:"duration,omitempty"`
	Order       int        `json:"order"`
	Content     string     `json:"content,omitempty"`
	Quiz        ModuleQuiz `json:"quiz"`
}

type FinalTest struct {
	Title        string         `json:"title,omitempty"`
	Questions    []QuizQuestion `json:"questions"`
	PassingScore int            `json:"passingScore"`
}

/* =============================================================================
   MODEL: courses
============================================================================= */
type CourseModel struct {
	CourseID          uuid.UUID `json:"course_id" gorm:"column:course_id;type:uuid;primaryKey"`
	CourseTitle       string    `json:"course_title" gorm:"column:course_title;type:varchar(180);not null"`
	CourseDescription string    `json:"course_description" gorm:"column:course_description;type:text"`
	CourseCoverImage  string    `json:"course_cover_image" gorm:"column:course_cover_image;type:text"`
	CourseInstructor  string    `json:"course_instructor" gorm:"column:course_instructor;type:varchar(120)"`
	CourseLevel       string    `json:"course_level" gorm:"column:course_level;type:varchar(16)"`
	CourseDurationHrs int       `json:"course_duration_hours" gorm:"column:course_duration_hours"`

	CourseEnrolledCount int `json:"course_enrolled_count" gorm:"column:course_enrolled_count;not null;default:0"`

	CourseModules   datatypes.JSONType[[]CourseModule] `json:"course_modules" gorm:"column:course_modules"`
	CourseFinalTest datatypes.JSONType[FinalTest]      `json:"course_final_test" gorm:"column:course_final_test"`

	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

func (CourseModel) TableName() string { return "courses" }

func (m *CourseModel) BeforeCreate(_ *gorm.DB) error {
	if m.CourseID == uuid.Nil {
		m.CourseID = uuid.New()
	}
	return nil
}

/* ===================================================================
   Helper methods: module order is significant
=================================================================== */

func (m *CourseModel) Modules() []CourseModule {
	return m.CourseModules.Data()
}

func (m *CourseModel) ModuleByID(moduleID string) (CourseModule, bool) {
	for _, mod := range m.Modules() {
		if mod.ID == moduleID {
			return mod, true
		}
	}
	return CourseModule{}, false
}

func (m *CourseModel) ModuleIDs() []string {
	mods := m.Modules()
	ids := make([]string, 0, len(mods))
	for _, mod := range mods {
		ids = append(ids, mod.ID)
	}
	return ids
}

func (m *CourseModel) ModuleTitles() []string {
	mods := m.Modules()
	titles := make([]string, 0, len(mods))
	for _, mod := range mods {
		titles = append(titles, mod.Title)
	}
	return titles
}

// PassingScoreForModule resolves the threshold for one module's quiz.
func (m *CourseModel) PassingScoreForModule(mod CourseModule) int {
	if mod.Quiz.PassingScore != nil && *mod.Quiz.PassingScore > 0 {
		return *mod.Quiz.PassingScore
	}
	return DefaultPassingScore
}

func (m *CourseModel) FinalTestData() FinalTest {
	return m.CourseFinalTest.Data()
}

func (m *CourseModel) FinalTestPassingScore() int {
	ft := m.FinalTestData()
	if ft.PassingScore > 0 {
		return ft.PassingScore
	}
	return DefaultPassingScore
}

// ValidateModules checks that module ids are unique within the course.
func (m *CourseModel) ValidateModules() bool {
	seen := make(map[string]struct{})
	for _, mod := range m.Modules() {
		if mod.ID == "" {
			return false
		}
		if _, dup := seen[mod.ID]; dup {
			return false
		}
		seen[mod.ID] = struct{}{}
	}
	return true
}
