package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	courseModel "credilink_backend/internals/features/courses/course/model"
	credentialModel "credilink_backend/internals/features/learning/certificates/model"
	progressModel "credilink_backend/internals/features/learning/progress/model"
	userModel "credilink_backend/internals/features/users/user/model"
	"credilink_backend/internals/helpers/apperr"
)

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
	sqlDB.SetMaxOpenConns(1) // one shared in-memory database

	if err := db.AutoMigrate(
		&userModel.UserModel{},
		&courseModel.CourseModel{},
		&progressModel.ProgressModel{},
		&credentialModel.CredentialModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCourse(t *testing.T, db *gorm.DB) *courseModel.CourseModel {
	t.Helper()

	questions := []courseModel.QuizQuestion{
		{ID: "q1", Text: "A?", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 0},
		{ID: "q2", Text: "B?", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 1},
		{ID: "q3", Text: "C?", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 2},
		{ID: "q4", Text: "D?", Options: []string{"a", "b", "c", "d"}, CorrectOptionIndex: 3},
	}
	strict := 80
	course := courseModel.CourseModel{
		CourseTitle: "Intro to Web3",
		CourseModules: datatypes.NewJSONType([]courseModel.CourseModule{
			{ID: "m1", Title: "Wallets", Order: 1, Quiz: courseModel.ModuleQuiz{Questions: questions}},
			{ID: "m2", Title: "Contracts", Order: 2, Quiz: courseModel.ModuleQuiz{Questions: questions, PassingScore: &strict}},
			{ID: "m3", Title: "Reading", Order: 3}, // no quiz
		}),
		CourseFinalTest: datatypes.NewJSONType(courseModel.FinalTest{
			Questions:    questions,
			PassingScore: 70,
		}),
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return &course
}

/* ==========================
   Enrollment
========================== */

func TestEnsureEnrolledCreatesUserAndProgressOnce(t *testing.T) {
	db := openTestDB(t)
	course := seedCourse(t, db)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	first, err := svc.EnsureEnrolled(ctx, "0xabc", course.CourseID)
	if err != nil {
		t.Fatalf("EnsureEnrolled: %v", err)
	}
	if first.ProgressID == uuid.Nil {
		t.Fatal("progress id not assigned")
	}

	// second call is a no-op apart from last-accessed
	second, err := svc.EnsureEnrolled(ctx, "0xabc", course.CourseID)
	if err != nil {
		t.Fatalf("EnsureEnrolled (repeat): %v", err)
	}
	if second.ProgressID != first.ProgressID {
		t.Fatalf("progress id changed on repeat enrollment: %s != %s", second.ProgressID, first.ProgressID)
	}

	var count int64
	db.Model(&progressModel.ProgressModel{}).Count(&count)
	if count != 1 {
		t.Fatalf("progress rows = %d, want 1", count)
	}

	var got courseModel.CourseModel
	db.First(&got, "course_id = ?", course.CourseID)
	if got.CourseEnrolledCount != 1 {
		t.Fatalf("enrolled count = %d, want 1 (bumped exactly once)", got.CourseEnrolledCount)
	}

	var user userModel.UserModel
	if err := db.First(&user, "user_id = ?", "0xabc").Error; err != nil {
		t.Fatalf("user record not created: %v", err)
	}
	if !user.HasEnrolled(course.CourseID.String()) {
		t.Fatal("course missing from user's enrolled list")
	}
	if !user.UserIsWeb3Connected {
		t.Fatal("wallet identity should be marked web3-connected")
	}
}

func TestEnsureEnrolledKeepsEarlierEnrollments(t *testing.T) {
	db := openTestDB(t)
	first := seedCourse(t, db)
	second := seedCourse(t, db)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	if _, err := svc.EnsureEnrolled(ctx, "0xabc", first.CourseID); err != nil {
		t.Fatalf("EnsureEnrolled (first course): %v", err)
	}
	if _, err := svc.EnsureEnrolled(ctx, "0xabc", second.CourseID); err != nil {
		t.Fatalf("EnsureEnrolled (second course): %v", err)
	}

	// the enrolled list is a set built by read-modify-write on the user
	// row; a later enrollment must never clobber an earlier entry
	var user userModel.UserModel
	if err := db.First(&user, "user_id = ?", "0xabc").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !user.HasEnrolled(first.CourseID.String()) || !user.HasEnrolled(second.CourseID.String()) {
		t.Fatalf("enrolled list = %v, want both course ids", user.UserEnrolledCourses)
	}
	if len(user.UserEnrolledCourses) != 2 {
		t.Fatalf("enrolled list length = %d, want 2", len(user.UserEnrolledCourses))
	}
}

func TestCreateProgressOrAdoptConvergesOnExistingRow(t *testing.T) {
	db := openTestDB(t)
	course := seedCourse(t, db)
	svc := NewEnrollmentService(db)
	ctx := context.Background()

	won, err := svc.EnsureEnrolled(ctx, "u1", course.CourseID)
	if err != nil {
		t.Fatalf("EnsureEnrolled: %v", err)
	}

	// the row already exists, as after losing an insert race: the insert
	// must come back clean (no unique-violation error that would abort a
	// postgres transaction) and adopt the winner's row
	var adopted progressModel.ProgressModel
	created := true
	err = db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		created, txErr = createProgressOrAdopt(tx, &adopted, "u1", course.CourseID, time.Now().UTC())
		return txErr
	})
	if err != nil {
		t.Fatalf("createProgressOrAdopt: %v", err)
	}
	if created {
		t.Fatal("existing row must be adopted, not re-created")
	}
	if adopted.ProgressID != won.ProgressID {
		t.Fatalf("adopted id %s, want winner's %s", adopted.ProgressID, won.ProgressID)
	}

	var count int64
	db.Model(&progressModel.ProgressModel{}).Count(&count)
	if count != 1 {
		t.Fatalf("progress rows = %d, want 1", count)
	}
	var got courseModel.CourseModel
	db.First(&got, "course_id = ?", course.CourseID)
	if got.CourseEnrolledCount != 1 {
		t.Fatalf("enrolled count = %d, want 1 (adoption runs no one-time mutations)", got.CourseEnrolledCount)
	}
}

func TestEnsureEnrolledUnknownCourse(t *testing.T) {
	db := openTestDB(t)
	svc := NewEnrollmentService(db)

	_, err := svc.EnsureEnrolled(context.Background(), "0xabc", uuid.New())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

/* ==========================
   Quiz attempts
========================== */

func enroll(t *testing.T, db *gorm.DB, userID string, courseID uuid.UUID) {
	t.Helper()
	if _, err := NewEnrollmentService(db).EnsureEnrolled(context.Background(), userID, courseID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
}

func TestRecordQuizAttemptPassAndComplete(t *testing.T) {
	db := openTestDB(t)
	course := seedCourse(t, db)
	enroll(t, db, "u1", course.CourseID)
	svc := NewQuizAttemptService(db)

	// 3 of 4 = 75, default threshold 70 -> pass
	result, err := svc.RecordQuizAttempt(context.Background(), RecordQuizAttemptInput{
		UserID:   "u1",
		CourseID: course.CourseID,
		ModuleID: "m1",
		Answers:  map[int]int{0: 0, 1: 1, 2: 2, 3: 0},
	})
	if err != nil {
		t.Fatalf("RecordQuizAttempt: %v", err)
	}
	if result.Score != 75 || !result.Passed {
		t.Fatalf("got score=%d passed=%v, want 75/true", result.Score, result.Passed)
	}
	if result.Attempt.AttemptNumber != 1 {
		t.Fatalf("attempt number = %d, want 1", result.Attempt.AttemptNumber)
	}

	var progress progressModel.ProgressModel
	db.First(&progress, "progress_user_id = ?", "u1")
	if !progress.HasCompletedModule("m1") {
		t.Fatal("passed module not in completed set")
	}
	if score, _ := progress.ModuleScore("m1"); score != 75 {
		t.Fatalf("stored score = %d, want 75", score)
	}
}

func TestRecordQuizAttemptModuleThresholdBeatsDefault(t *testing.T) {
	db := openTestDB(t)
	course := seedCourse(t, db)
	enroll(t, db, "u1", course.CourseID)
	svc := NewQuizAttemptService(db)

	// 75 fails m2's configured threshold of 80
	result, err := svc.RecordQuizAttempt(context.Background(), RecordQuizAttemptInput{
		UserID:   "u1",
		CourseID: course.CourseID,
		ModuleID: "m2",
		Answers:  map[int]int{0: 0, 1: 1, 2: 2, 3: 0},
	})
	if err != nil {
		t.Fatalf("RecordQuizAttempt: %v", err)
	}
	if result.Passed {
		t.Fatal("75 should fail a threshold of 80")
	}

	var progress progressModel.ProgressModel
	db.First(&progress, "progress_user_id = ?", "u1")
	if progress.HasCompletedModule("m2") {
		t.Fatal("failed module must not enter the completed set")
	}
}

func TestRecordQuizAttemptLatestScoreWinsHistoryGrows(t *testing.T) {
	db := openTestDB(t)
	course := seedCourse(t, db)
	enroll(t, db, "u1", course.CourseID)
	svc := NewQuizAttemptService(db)
	ctx := context.Background()

	// pass first (100), then fail (25): latest attempt overwrites the score
	// but completion is sticky
	if _, err := svc.RecordQuizAttempt(ctx, RecordQuizAttemptInput{
		UserID: "u1", CourseID: course.CourseID, ModuleID: "m1",
		Answers: map[int]int{0: 0, 1: 1, 2: 2, 3: 3},
	}); err != nil {
		t.Fatalf("attempt 1: %v", err)
	}
	second, err := svc.RecordQuizAttempt(ctx, RecordQuizAttemptInput{
		UserID: "u1", CourseID: course.CourseID, ModuleID: "m1",
		Answers: map[int]int{0: 0, 1: 0, 2: 0, 3: 0},
	})
	if err != nil {
		t.Fatalf("attempt 2: %v", err)
	}
	if second.Attempt.AttemptNumber != 2 {
		t.Fatalf("attempt number = %d, want 2", second.Attempt.AttemptNumber)
	}

	var progress progressModel.ProgressModel
	db.First(&progress, "progress_user_id = ?", "u1")
	if score, _ := progress.ModuleScore("m1"); score != 25 {
		t.Fatalf("stored score = %d, want latest attempt 25", score)
	}
	if !progress.HasCompletedModule("m1") {
		t.Fatal("completion must not be revoked by a later failing attempt")
	}
	if got := len(progress.AttemptsFor("m1")); got != 2 {
		t.Fatalf("attempt history length = %d, want 2", got)
	}
}

func TestRecordQuizAttemptRejections(t *testing.T) {
	db := openTestDB(t)
	course := seedCourse(t, db)
	enroll(t, db, "u1", course.CourseID)
	svc := NewQuizAttemptService(db)
	ctx := context.Background()

	// unknown module
	_, err := svc.RecordQuizAttempt(ctx, RecordQuizAttemptInput{
		UserID: "u1", CourseID: course.CourseID, ModuleID: "nope",
		Answers: map[int]int{0: 0},
	})
	if !apperr.IsKind(err, apperr.KindInvalidArgument) {
		t.Fatalf("unknown module: err = %v, want InvalidArgument", err)
	}

	// module without a quiz
	_, err = svc.RecordQuizAttempt(ctx, RecordQuizAttemptInput{
		UserID: "u1", CourseID: course.CourseID, ModuleID: "m3",
		Answers: map[int]int{},
	})
	if !apperr.IsKind(err, apperr.KindPreconditionFailed) {
		t.Fatalf("quizless module: err = %v, want PreconditionFailed", err)
	}

	// not enrolled
	_, err = svc.RecordQuizAttempt(ctx, RecordQuizAttemptInput{
		UserID: "stranger", CourseID: course.CourseID, ModuleID: "m1",
		Answers: map[int]int{0: 0, 1: 1, 2: 2, 3: 3},
	})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("not enrolled: err = %v, want NotFound", err)
	}
}

func TestMarkModuleCompleteIdempotent(t *testing.T) {
	db := openTestDB(t)
	course := seedCourse(t, db)
	enroll(t, db, "u1", course.CourseID)
	svc := NewQuizAttemptService(db)
	ctx := context.Background()

	if _, err := svc.MarkModuleComplete(ctx, "u1", course.CourseID, "m3"); err != nil {
		t.Fatalf("MarkModuleComplete: %v", err)
	}
	progress, err := svc.MarkModuleComplete(ctx, "u1", course.CourseID, "m3")
	if err != nil {
		t.Fatalf("MarkModuleComplete (repeat): %v", err)
	}

	count := 0
	for _, id := range progress.ProgressCompletedModules {
		if id == "m3" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("m3 appears %d times in completed set, want 1", count)
	}
}

/* ==========================
   Progress reads
========================== */

func TestGetStatusLeavesProgressUntouched(t *testing.T) {
	db := openTestDB(t)
	course := seedCourse(t, db)
	enroll(t, db, "u1", course.CourseID)
	query := NewProgressQueryService(db)

	var before progressModel.ProgressModel
	db.First(&before, "progress_user_id = ?", "u1")

	if _, err := query.GetStatus(context.Background(), "u1", course.CourseID); err != nil {
		t.Fatalf("GetStatus: %v", err)
	}

	// status polling is a pure read: no writes, no row locks
	var after progressModel.ProgressModel
	db.First(&after, "progress_user_id = ?", "u1")
	if !after.ProgressLastAccessedAt.Equal(before.ProgressLastAccessedAt) {
		t.Fatal("GetStatus must not touch last-accessed")
	}
}

func TestProgressStatusNextModuleAndGate(t *testing.T) {
	db := openTestDB(t)
	course := seedCourse(t, db)
	enroll(t, db, "u1", course.CourseID)
	attempts := NewQuizAttemptService(db)
	query := NewProgressQueryService(db)
	ctx := context.Background()

	status, err := query.GetStatus(ctx, "u1", course.CourseID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.NextModuleID != "m1" || status.ModulesDone != 0 || status.FinalTestReady {
		t.Fatalf("fresh status = next=%q done=%d ready=%v", status.NextModuleID, status.ModulesDone, status.FinalTestReady)
	}

	for _, id := range []string{"m1", "m2", "m3"} {
		if _, err := attempts.MarkModuleComplete(ctx, "u1", course.CourseID, id); err != nil {
			t.Fatalf("complete %s: %v", id, err)
		}
	}

	status, err = query.GetStatus(ctx, "u1", course.CourseID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.PercentComplete != 100 || !status.FinalTestReady || status.NextModuleID != "" {
		t.Fatalf("complete status = pct=%d ready=%v next=%q", status.PercentComplete, status.FinalTestReady, status.NextModuleID)
	}
}
