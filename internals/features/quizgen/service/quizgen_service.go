package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	courseModel "credilink_backend/internals/features/courses/course/model"
	"credilink_backend/internals/features/quizgen/client"
	"credilink_backend/internals/helpers/apperr"
)

const (
	defaultModuleQuestions    = 5
	defaultFinalTestQuestions = 15
	requiredOptionCount       = 4
)

/* =========================================================
   SERVICE: AI quiz authoring
   The model's output is untrusted: everything is validated
   before it can reach a course record. A malformed response
   is a GenerationFailed (retryable), never stored state.
========================================================= */

type QuizGenService struct {
	DB     *gorm.DB
	Client client.Client
}

func NewQuizGenService(db *gorm.DB, c client.Client) *QuizGenService {
	return &QuizGenService{DB: db, Client: c}
}

type GeneratedQuiz struct {
	Questions []courseModel.QuizQuestion `json:"questions"`
}

// GenerateModuleQuiz builds a module quiz from a video transcript.
func (s *QuizGenService) GenerateModuleQuiz(ctx context.Context, transcript, moduleTitle string, numQuestions int) (*GeneratedQuiz, error) {
	if strings.TrimSpace(transcript) == "" || len(strings.TrimSpace(transcript)) < 10 {
		return nil, apperr.InvalidArgument("transcript is too short")
	}
	if numQuestions <= 0 {
		numQuestions = defaultModuleQuestions
	}

	prompt := buildModuleQuizPrompt(transcript, moduleTitle, numQuestions)
	return s.generate(ctx, "q", prompt)
}

// GenerateModuleQuizFromVideo builds a module quiz straight from a YouTube
// link, for modules without a stored transcript. The model is multimodal;
// the video reference rides along as a second content part.
func (s *QuizGenService) GenerateModuleQuizFromVideo(ctx context.Context, videoURL, moduleTitle string, numQuestions int) (*GeneratedQuiz, error) {
	videoURL = strings.TrimSpace(videoURL)
	if !isYouTubeURL(videoURL) {
		return nil, apperr.InvalidArgument("a YouTube video url is required")
	}
	if numQuestions <= 0 {
		numQuestions = defaultModuleQuestions
	}

	return s.generate(ctx, "q", buildVideoQuizPrompt(moduleTitle, numQuestions), videoURL)
}

// GenerateFinalTest derives a course-wide test from the module quizzes.
func (s *QuizGenService) GenerateFinalTest(ctx context.Context, courseTitle string, modules []courseModel.CourseModule, numQuestions int) (*GeneratedQuiz, error) {
	withQuiz := make([]courseModel.CourseModule, 0, len(modules))
	for _, m := range modules {
		if len(m.Quiz.Questions) > 0 {
			withQuiz = append(withQuiz, m)
		}
	}
	if len(withQuiz) == 0 {
		return nil, apperr.PreconditionFailed("no module quizzes to derive a final test from")
	}
	if numQuestions <= 0 {
		numQuestions = defaultFinalTestQuestions
	}

	prompt := buildFinalTestPrompt(courseTitle, withQuiz, numQuestions)
	return s.generate(ctx, "ft", prompt)
}

func (s *QuizGenService) generate(ctx context.Context, idPrefix string, parts ...string) (*GeneratedQuiz, error) {
	raw, err := s.Client.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, err
	}

	jsonText, ok := extractJSONObject(raw)
	if !ok {
		return nil, apperr.GenerationFailed("no JSON object in model response")
	}

	var quiz GeneratedQuiz
	if err := json.Unmarshal([]byte(jsonText), &quiz); err != nil {
		return nil, apperr.Wrap(apperr.KindGenerationFailed, "model response is not a valid quiz", err)
	}

	for i := range quiz.Questions {
		if quiz.Questions[i].ID == "" {
			quiz.Questions[i].ID = fmt.Sprintf("%s%d", idPrefix, i+1)
		}
	}

	if err := ValidateQuestions(quiz.Questions); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// ValidateQuestions rejects anything that would corrupt quiz state: an empty
// set, a wrong option count, or a correct index outside the option range.
func ValidateQuestions(questions []courseModel.QuizQuestion) error {
	if len(questions) == 0 {
		return apperr.GenerationFailed("model returned no questions")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return apperr.Newf(apperr.KindGenerationFailed, "question %d has no text", i+1)
		}
		if len(q.Options) != requiredOptionCount {
			return apperr.Newf(apperr.KindGenerationFailed, "question %d has %d options, want %d", i+1, len(q.Options), requiredOptionCount)
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return apperr.Newf(apperr.KindGenerationFailed, "question %d correct index %d out of range", i+1, q.CorrectOptionIndex)
		}
	}
	return nil
}

// StoreModuleQuiz persists a validated quiz into the course's module list.
func (s *QuizGenService) StoreModuleQuiz(ctx context.Context, courseID uuid.UUID, moduleID string, quiz *GeneratedQuiz) error {
	if quiz == nil {
		return apperr.InvalidArgument("quiz is required")
	}
	if err := ValidateQuestions(quiz.Questions); err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course courseModel.CourseModel
		if err := tx.First(&course, "course_id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("course not found")
			}
			return err
		}

		modules := course.Modules()
		found := false
		for i := range modules {
			if modules[i].ID == moduleID {
				modules[i].Quiz.Questions = quiz.Questions
				found = true
				break
			}
		}
		if !found {
			return apperr.Newf(apperr.KindInvalidArgument, "module %q does not belong to this course", moduleID)
		}

		return tx.Model(&course).
			Update("course_modules", datatypes.NewJSONType(modules)).Error
	})
}

// StoreFinalTest persists a validated generated test as the course's final
// test, keeping the previous passing score when one was configured.
func (s *QuizGenService) StoreFinalTest(ctx context.Context, courseID uuid.UUID, quiz *GeneratedQuiz) error {
	if quiz == nil {
		return apperr.InvalidArgument("quiz is required")
	}
	if err := ValidateQuestions(quiz.Questions); err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course courseModel.CourseModel
		if err := tx.First(&course, "course_id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("course not found")
			}
			return err
		}

		finalTest := course.FinalTestData()
		finalTest.Questions = quiz.Questions
		if finalTest.PassingScore <= 0 {
			finalTest.PassingScore = courseModel.DefaultPassingScore
		}

		return tx.Model(&course).
			Update("course_final_test", datatypes.NewJSONType(finalTest)).Error
	})
}

/* =========================================================
   Answer explanations: deterministic fallback when the
   model output cannot be parsed
========================================================= */

type Explanation struct {
	Question            string   `json:"question"`
	Options             []string `json:"options"`
	CorrectAnswerIndex  int      `json:"correctAnswerIndex"`
	SelectedAnswerIndex int      `json:"selectedAnswerIndex"`
	Feedback            string   `json:"feedback"`
}

func (s *QuizGenService) AnswerExplanations(ctx context.Context, questions []courseModel.QuizQuestion, answers []int) ([]Explanation, error) {
	if len(answers) != len(questions) {
		return nil, apperr.InvalidArgument("answers must cover every question")
	}

	raw, err := s.Client.GenerateContent(ctx, buildExplanationPrompt(questions, answers))
	if err != nil {
		if apperr.IsKind(err, apperr.KindUnavailable) {
			return nil, err
		}
		return fallbackExplanations(questions, answers), nil
	}

	jsonText, ok := extractJSONArray(raw)
	if !ok {
		return fallbackExplanations(questions, answers), nil
	}
	var explanations []Explanation
	if err := json.Unmarshal([]byte(jsonText), &explanations); err != nil || len(explanations) != len(questions) {
		return fallbackExplanations(questions, answers), nil
	}
	return explanations, nil
}

func fallbackExplanations(questions []courseModel.QuizQuestion, answers []int) []Explanation {
	out := make([]Explanation, 0, len(questions))
	for i, q := range questions {
		feedback := "Correct! Well done."
		if answers[i] != q.CorrectOptionIndex {
			feedback = fmt.Sprintf("Incorrect. The correct answer is: %s", q.Options[q.CorrectOptionIndex])
		}
		out = append(out, Explanation{
			Question:            q.Text,
			Options:             q.Options,
			CorrectAnswerIndex:  q.CorrectOptionIndex,
			SelectedAnswerIndex: answers[i],
			Feedback:            feedback,
		})
	}
	return out
}

/* =========================================================
   Prompt builders & JSON extraction
========================================================= */

func buildModuleQuizPrompt(transcript, moduleTitle string, n int) string {
	return fmt.Sprintf(`You are an educational content creator specializing in creating quizzes for online courses.
I'm going to provide you with a transcript from a video about %q.

Please generate %d multiple-choice quiz questions based on the transcript provided.

For each question:
1. Create a clear question based on factual information from the transcript
2. Provide 4 possible answers, with only one being correct
3. Indicate which answer is correct (0, 1, 2, or 3, with 0 being the first option)

Return the quiz questions in the following JSON format:
{"questions":[{"id":"q1","text":"Question text here?","options":["Option A","Option B","Option C","Option D"],"correctOptionIndex":2}]}

Only respond with the JSON and nothing else.

Here's the transcript:

%s`, moduleTitle, n, transcript)
}

func buildVideoQuizPrompt(moduleTitle string, n int) string {
	return fmt.Sprintf(`You are an expert in creating educational content.
Watch the video from the following YouTube URL and create a %d-question multiple-choice quiz based on its content.
The quiz is for a module titled %q.

For each question:
1. Create a clear question based on factual information from the video
2. Provide 4 possible answers, with only one being correct
3. Indicate which answer is correct (0, 1, 2, or 3, with 0 being the first option)

Return the quiz questions in the following JSON format:
{"questions":[{"id":"q1","text":"Question text here?","options":["Option A","Option B","Option C","Option D"],"correctOptionIndex":2}]}

Only respond with the JSON and nothing else.`, n, moduleTitle)
}

func buildFinalTestPrompt(courseTitle string, modules []courseModel.CourseModule, n int) string {
	var sb strings.Builder
	for _, m := range modules {
		fmt.Fprintf(&sb, "Module: %s\n", m.Title)
		for i, q := range m.Quiz.Questions {
			fmt.Fprintf(&sb, "Q%d: %s\n", i+1, q.Text)
		}
		sb.WriteString("\n")
	}

	return fmt.Sprintf(`You are an educational assessment designer creating a comprehensive final test for the course %q.

Based on the following module quizzes, generate %d new multiple-choice questions that are closely related to the provided questions but not identical.

%s
Return the test questions in the following JSON format:
{"questions":[{"id":"ft1","text":"Question text here?","options":["Option A","Option B","Option C","Option D"],"correctOptionIndex":2}]}

Only respond with the JSON and nothing else.`, courseTitle, n, sb.String())
}

func buildExplanationPrompt(questions []courseModel.QuizQuestion, answers []int) string {
	var sb strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&sb, "Question %d: %s\nOptions: %s\nCorrect Answer Index: %d\nSelected Answer Index: %d\n\n",
			i+1, q.Text, strings.Join(q.Options, ", "), q.CorrectOptionIndex, answers[i])
	}

	return fmt.Sprintf(`You are an educational assessment specialist providing feedback on quiz answers.
For each question and the selected answer, provide a brief explanation of whether the answer is correct or not, and why. Be encouraging in your feedback.

%s
Provide an explanation for each question in a JSON array of objects with keys: "question", "options", "correctAnswerIndex", "selectedAnswerIndex", "feedback".
Only respond with the JSON and nothing else.`, sb.String())
}

// isYouTubeURL accepts the watch-page and short-link hosts; anything else is
// rejected before it can reach the model as an instruction.
func isYouTubeURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host == "youtube.com" || host == "m.youtube.com" || host == "youtu.be"
}

// extractJSONObject pulls the outermost {...} from a raw completion that may
// be wrapped in prose or code fences.
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func extractJSONArray(text string) (string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
