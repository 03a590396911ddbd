package dto

import (
	"time"

	"github.com/google/uuid"

	courseModel "credilink_backend/internals/features/courses/course/model"
)

/* =============================================================================
   Requests
============================================================================= */

type QuizQuestionRequest struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text" validate:"required"`
	Options            []string `json:"options" validate:"required,len=4,dive,required"`
	CorrectOptionIndex int      `json:"correctOptionIndex" validate:"gte=0,lte=3"`
	Points             int      `json:"points,omitempty"`
}

type ModuleQuizRequest struct {
	Questions    []QuizQuestionRequest `json:"questions" validate:"dive"`
	PassingScore *int                  `json:"passingScore,omitempty" validate:"omitempty,gte=1,lte=100"`
}

type CourseModuleRequest struct {
	ID          string            `json:"id" validate:"required"`
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description,omitempty"`
	VideoURL    string            `json:"videoUrl,omitempty"`
	DurationMin int               `json:"duration,omitempty"`
	Order       int               `json:"order"`
	Content     string            `json:"content,omitempty"`
	Quiz        ModuleQuizRequest `json:"quiz"`
}

type FinalTestRequest struct {
	Title        string                `json:"title,omitempty"`
	Questions    []QuizQuestionRequest `json:"questions" validate:"dive"`
	PassingScore int                   `json:"passingScore" validate:"omitempty,gte=1,lte=100"`
}

type CreateCourseRequest struct {
	Title       string                `json:"title" validate:"required,min=3,max=180"`
	Description string                `json:"description"`
	CoverImage  string                `json:"cover_image"`
	Instructor  string                `json:"instructor"`
	Level       string                `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	DurationHrs int                   `json:"duration_hours" validate:"omitempty,gte=0"`
	Modules     []CourseModuleRequest `json:"modules" validate:"dive"`
	FinalTest   *FinalTestRequest     `json:"final_test,omitempty"`
}

type UpdateCourseRequest struct {
	Title       *string               `json:"title,omitempty" validate:"omitempty,min=3,max=180"`
	Description *string               `json:"description,omitempty"`
	CoverImage  *string               `json:"cover_image,omitempty"`
	Instructor  *string               `json:"instructor,omitempty"`
	Level       *string               `json:"level,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	DurationHrs *int                  `json:"duration_hours,omitempty" validate:"omitempty,gte=0"`
	Modules     []CourseModuleRequest `json:"modules,omitempty" validate:"omitempty,dive"`
	FinalTest   *FinalTestRequest     `json:"final_test,omitempty"`
}

func (r QuizQuestionRequest) ToModel() courseModel.QuizQuestion {
	return courseModel.QuizQuestion{
		ID:                 r.ID,
		Text:               r.Text,
		Options:            r.Options,
		CorrectOptionIndex: r.CorrectOptionIndex,
		Points:             r.Points,
	}
}

func (r CourseModuleRequest) ToModel() courseModel.CourseModule {
	questions := make([]courseModel.QuizQuestion, 0, len(r.Quiz.Questions))
	for _, q := range r.Quiz.Questions {
		questions = append(questions, q.ToModel())
	}
	return courseModel.CourseModule{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		VideoURL:    r.VideoURL,
		DurationMin: r.DurationMin,
		Order:       r.Order,
		Content:     r.Content,
		Quiz: courseModel.ModuleQuiz{
			Questions:    questions,
			PassingScore: r.Quiz.PassingScore,
		},
	}
}

func (r FinalTestRequest) ToModel() courseModel.FinalTest {
	questions := make([]courseModel.QuizQuestion, 0, len(r.Questions))
	for _, q := range r.Questions {
		questions = append(questions, q.ToModel())
	}
	return courseModel.FinalTest{
		Title:        r.Title,
		Questions:    questions,
		PassingScore: r.PassingScore,
	}
}

func ModulesToModel(reqs []CourseModuleRequest) []courseModel.CourseModule {
	mods := make([]courseModel.CourseModule, 0, len(reqs))
	for _, r := range reqs {
		mods = append(mods, r.ToModel())
	}
	return mods
}

/* =============================================================================
   Responses: learner-facing views never carry answer keys
============================================================================= */

type QuizQuestionPublic struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Points  int      `json:"points,omitempty"`
}

type CourseModulePublic struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description,omitempty"`
	VideoURL      string               `json:"videoUrl,omitempty"`
	DurationMin   int                  `json:"duration,omitempty"`
	Order         int                  `json:"order"`
	Content       string               `json:"content,omitempty"`
	QuizQuestions []QuizQuestionPublic `json:"quiz_questions"`
	HasQuiz       bool                 `json:"has_quiz"`
}

type CourseSummaryResponse struct {
	CourseID      uuid.UUID `json:"course_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CoverImage    string    `json:"cover_image,omitempty"`
	Instructor    string    `json:"instructor,omitempty"`
	Level         string    `json:"level,omitempty"`
	DurationHrs   int       `json:"duration_hours,omitempty"`
	ModuleCount   int       `json:"module_count"`
	EnrolledCount int       `json:"enrolled_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type CourseDetailResponse struct {
	CourseSummaryResponse
	Modules      []CourseModulePublic `json:"modules"`
	HasFinalTest bool                 `json:"has_final_test"`
}

func stripAnswers(questions []courseModel.QuizQuestion) []QuizQuestionPublic {
	out := make([]QuizQuestionPublic, 0, len(questions))
	for _, q := range questions {
		out = append(out, QuizQuestionPublic{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
			Points:  q.Points,
		})
	}
	return out
}

func NewCourseSummaryResponse(m *courseModel.CourseModel) CourseSummaryResponse {
	return CourseSummaryResponse{
		CourseID:      m.CourseID,
		Title:         m.CourseTitle,
		Description:   m.CourseDescription,
		CoverImage:    m.CourseCoverImage,
		Instructor:    m.CourseInstructor,
		Level:         m.CourseLevel,
		DurationHrs:   m.CourseDurationHrs,
		ModuleCount:   len(m.Modules()),
		EnrolledCount: m.CourseEnrolledCount,
		CreatedAt:     m.CreatedAt,
	}
}

func NewCourseDetailResponse(m *courseModel.CourseModel) CourseDetailResponse {
	mods := m.Modules()
	public := make([]CourseModulePublic, 0, len(mods))
	for _, mod := range mods {
		public = append(public, CourseModulePublic{
			ID:            mod.ID,
			Title:         mod.Title,
			Description:   mod.Description,
			VideoURL:      mod.VideoURL,
			DurationMin:   mod.DurationMin,
			Order:         mod.Order,
			Content:       mod.Content,
			QuizQuestions: stripAnswers(mod.Quiz.Questions),
			HasQuiz:       len(mod.Quiz.Questions) > 0,
		})
	}
	return CourseDetailResponse{
		CourseSummaryResponse: NewCourseSummaryResponse(m),
		Modules:               public,
		HasFinalTest:          len(m.FinalTestData().Questions) > 0,
	}
}
