package service

import (
	"context"
	"strings"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	courseModel "credilink_backend/internals/features/courses/course/model"
	"credilink_backend/internals/helpers/apperr"
)

// fakeClient scripts the generative boundary.
type fakeClient struct {
	response string
	err      error
	prompts  []string   // first part of each call
	calls    [][]string // full part lists
}

func (f *fakeClient) GenerateContent(_ context.Context, parts ...string) (string, error) {
	f.calls = append(f.calls, parts)
	if len(parts) > 0 {
		f.prompts = append(f.prompts, parts[0])
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const validQuizJSON = `{"questions":[
  {"id":"q1","text":"What is a wallet?","options":["A","B","C","D"],"correctOptionIndex":0},
  {"text":"What is gas?","options":["A","B","C","D"],"correctOptionIndex":2}
]}`

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&courseModel.CourseModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGenerateModuleQuizParsesAndAssignsIDs(t *testing.T) {
	fake := &fakeClient{response: "Sure! Here is your quiz:\n```json\n" + validQuizJSON + "\n```"}
	svc := NewQuizGenService(nil, fake)

	quiz, err := svc.GenerateModuleQuiz(context.Background(), "a long enough transcript about wallets", "Wallets", 2)
	if err != nil {
		t.Fatalf("GenerateModuleQuiz: %v", err)
	}
	if len(quiz.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(quiz.Questions))
	}
	if quiz.Questions[0].ID != "q1" {
		t.Fatalf("id = %q, want model-provided q1", quiz.Questions[0].ID)
	}
	if quiz.Questions[1].ID != "q2" {
		t.Fatalf("id = %q, want assigned q2", quiz.Questions[1].ID)
	}
	if len(fake.prompts) != 1 || !strings.Contains(fake.prompts[0], "Wallets") {
		t.Fatal("prompt should carry the module title")
	}
}

func TestGenerateModuleQuizFromVideoSendsURLAsOwnPart(t *testing.T) {
	fake := &fakeClient{response: validQuizJSON}
	svc := NewQuizGenService(nil, fake)

	videoURL := "https://www.youtube.com/watch?v=abc123"
	quiz, err := svc.GenerateModuleQuizFromVideo(context.Background(), videoURL, "Wallets", 2)
	if err != nil {
		t.Fatalf("GenerateModuleQuizFromVideo: %v", err)
	}
	if len(quiz.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(quiz.Questions))
	}
	if len(fake.calls) != 1 || len(fake.calls[0]) != 2 {
		t.Fatalf("calls = %+v, want one call with a prompt part and a video part", fake.calls)
	}
	if fake.calls[0][1] != videoURL {
		t.Fatalf("video part = %q, want %q", fake.calls[0][1], videoURL)
	}
	if !strings.Contains(fake.calls[0][0], "Wallets") {
		t.Fatal("prompt should carry the module title")
	}
}

func TestGenerateModuleQuizFromVideoRejectsNonYouTubeURLs(t *testing.T) {
	svc := NewQuizGenService(nil, &fakeClient{response: validQuizJSON})

	for _, raw := range []string{
		"",
		"not a url",
		"ftp://youtube.com/watch?v=x",
		"https://example.com/watch?v=x",
	} {
		if _, err := svc.GenerateModuleQuizFromVideo(context.Background(), raw, "Wallets", 2); !apperr.IsKind(err, apperr.KindInvalidArgument) {
			t.Fatalf("url %q: err = %v, want InvalidArgument", raw, err)
		}
	}

	// the short-link host is fine
	if _, err := svc.GenerateModuleQuizFromVideo(context.Background(), "https://youtu.be/abc123", "Wallets", 2); err != nil {
		t.Fatalf("short link: %v", err)
	}
}

func TestGenerateModuleQuizRejectsShortTranscript(t *testing.T) {
	svc := NewQuizGenService(nil, &fakeClient{response: validQuizJSON})

	_, err := svc.GenerateModuleQuiz(context.Background(), "short", "Wallets", 2)
	if !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}

func TestGenerateModuleQuizMalformedResponses(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"no json", "I could not generate a quiz, sorry."},
		{"broken json", `{"questions":[{"text":"?"`},
		{"empty set", `{"questions":[]}`},
		{"three options", `{"questions":[{"text":"?","options":["A","B","C"],"correctOptionIndex":0}]}`},
		{"index out of range", `{"questions":[{"text":"?","options":["A","B","C","D"],"correctOptionIndex":5}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewQuizGenService(nil, &fakeClient{response: tc.response})
			_, err := svc.GenerateModuleQuiz(context.Background(), "a long enough transcript", "", 2)
			if !apperr.IsKind(err, apperr.KindGenerationFailed) {
				t.Fatalf("err = %v, want GenerationFailed", err)
			}
		})
	}
}

func TestGenerateFinalTestRequiresModuleQuizzes(t *testing.T) {
	svc := NewQuizGenService(nil, &fakeClient{response: validQuizJSON})

	_, err := svc.GenerateFinalTest(context.Background(), "Course", []courseModel.CourseModule{
		{ID: "m1", Title: "No quiz here"},
	}, 5)
	if !apperr.IsKind(err, apperr.KindPreconditionFailed) {
		t.Fatalf("err = %v, want PreconditionFailed", err)
	}
}

func TestGenerateFinalTestUsesModuleQuestions(t *testing.T) {
	fake := &fakeClient{response: validQuizJSON}
	svc := NewQuizGenService(nil, fake)

	modules := []courseModel.CourseModule{
		{ID: "m1", Title: "Wallets", Quiz: courseModel.ModuleQuiz{Questions: []courseModel.QuizQuestion{
			{ID: "q1", Text: "What is a seed phrase?", Options: []string{"A", "B", "C", "D"}, CorrectOptionIndex: 1},
		}}},
	}
	if _, err := svc.GenerateFinalTest(context.Background(), "Web3 101", modules, 5); err != nil {
		t.Fatalf("GenerateFinalTest: %v", err)
	}
	if !strings.Contains(fake.prompts[0], "What is a seed phrase?") {
		t.Fatal("prompt should include source module questions")
	}
}

func TestStoreModuleQuizWritesToCourse(t *testing.T) {
	db := openTestDB(t)
	course := courseModel.CourseModel{
		CourseTitle: "Web3 101",
		CourseModules: datatypes.NewJSONType([]courseModel.CourseModule{
			{ID: "m1", Title: "Wallets", Order: 1},
		}),
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	svc := NewQuizGenService(db, &fakeClient{})
	quiz := &GeneratedQuiz{Questions: []courseModel.QuizQuestion{
		{ID: "q1", Text: "?", Options: []string{"A", "B", "C", "D"}, CorrectOptionIndex: 0},
	}}

	if err := svc.StoreModuleQuiz(context.Background(), course.CourseID, "m1", quiz); err != nil {
		t.Fatalf("StoreModuleQuiz: %v", err)
	}

	var got courseModel.CourseModel
	db.First(&got, "course_id = ?", course.CourseID)
	mod, ok := got.ModuleByID("m1")
	if !ok || len(mod.Quiz.Questions) != 1 {
		t.Fatalf("stored module quiz = %+v", mod.Quiz)
	}

	// wrong module id
	err := svc.StoreModuleQuiz(context.Background(), course.CourseID, "m9", quiz)
	if !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}

func TestStoreFinalTestKeepsConfiguredThreshold(t *testing.T) {
	db := openTestDB(t)
	course := courseModel.CourseModel{
		CourseTitle:     "Web3 101",
		CourseFinalTest: datatypes.NewJSONType(courseModel.FinalTest{PassingScore: 85}),
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	svc := NewQuizGenService(db, &fakeClient{})
	quiz := &GeneratedQuiz{Questions: []courseModel.QuizQuestion{
		{ID: "ft1", Text: "?", Options: []string{"A", "B", "C", "D"}, CorrectOptionIndex: 0},
	}}
	if err := svc.StoreFinalTest(context.Background(), course.CourseID, quiz); err != nil {
		t.Fatalf("StoreFinalTest: %v", err)
	}

	var got courseModel.CourseModel
	db.First(&got, "course_id = ?", course.CourseID)
	ft := got.FinalTestData()
	if len(ft.Questions) != 1 || ft.PassingScore != 85 {
		t.Fatalf("final test = %+v, want 1 question and preserved threshold 85", ft)
	}
}

func TestAnswerExplanationsFallback(t *testing.T) {
	questions := []courseModel.QuizQuestion{
		{ID: "q1", Text: "A?", Options: []string{"right", "wrong", "wrong", "wrong"}, CorrectOptionIndex: 0},
		{ID: "q2", Text: "B?", Options: []string{"wrong", "right", "wrong", "wrong"}, CorrectOptionIndex: 1},
	}

	// unparseable model output degrades to deterministic feedback
	svc := NewQuizGenService(nil, &fakeClient{response: "not json at all"})
	explanations, err := svc.AnswerExplanations(context.Background(), questions, []int{0, 0})
	if err != nil {
		t.Fatalf("AnswerExplanations: %v", err)
	}
	if len(explanations) != 2 {
		t.Fatalf("explanations = %d, want 2", len(explanations))
	}
	if !strings.Contains(explanations[0].Feedback, "Correct") {
		t.Fatalf("feedback[0] = %q, want correct-answer feedback", explanations[0].Feedback)
	}
	if !strings.Contains(explanations[1].Feedback, "right") {
		t.Fatalf("feedback[1] = %q, want the correct option named", explanations[1].Feedback)
	}

	// unavailability propagates instead of faking feedback
	svc = NewQuizGenService(nil, &fakeClient{err: apperr.Unavailable("down", nil)})
	if _, err := svc.AnswerExplanations(context.Background(), questions, []int{0, 1}); !apperr.IsKind(err, apperr.KindUnavailable) {
		t.Fatalf("err = %v, want Unavailable", err)
	}

	// answer count must match
	svc = NewQuizGenService(nil, &fakeClient{response: "x"})
	if _, err := svc.AnswerExplanations(context.Background(), questions, []int{0}); !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}

func TestExtractJSONHelpers(t *testing.T) {
	if got, ok := extractJSONObject("prefix {\"a\":1} suffix"); !ok || got != `{"a":1}` {
		t.Fatalf("extractJSONObject = %q/%v", got, ok)
	}
	if _, ok := extractJSONObject("no braces here"); ok {
		t.Fatal("extractJSONObject should fail without braces")
	}
	if got, ok := extractJSONArray("```json\n[1,2]\n```"); !ok || got != "[1,2]" {
		t.Fatalf("extractJSONArray = %q/%v", got, ok)
	}
}
