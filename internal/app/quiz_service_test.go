package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

func TestJoinAndScoring(t *testing.T) {
	ctx := context.Background()
	service, quizID := newTestService(t)

	if _, err := service.Join(ctx, quizID, "u1", "Alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := service.Join(ctx, quizID, "u2", "Bob"); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	lb, result, err := service.SubmitAnswer(ctx, quizID, "u2", domain.AnswerSubmission{
		QuestionID: "file-0",
		Answer:     "  paris ", // trimmed and case-insensitive
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !result.Correct || result.Awarded != 1 || result.TotalScore != 1 || result.CorrectAnswer != "Paris" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(lb.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lb.Entries))
	}
	if lb.Entries[0].UserID != "u2" || lb.Entries[0].Score != 1 {
		t.Fatalf("expected Bob to lead with 1 point, got %+v", lb.Entries[0])
	}
}

func TestWrongAnswerRevealsKey(t *testing.T) {
	ctx := context.Background()
	service, quizID := newTestService(t)
	_, _ = service.Join(ctx, quizID, "u1", "Alice")

	_, result, err := service.SubmitAnswer(ctx, quizID, "u1", domain.AnswerSubmission{QuestionID: "file-0", Answer: "Rome"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Correct || result.Awarded != 0 || result.CorrectAnswer != "Paris" || result.Explanation == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSubmitTwiceRejected(t *testing.T) {
	ctx := context.Background()
	service, quizID := newTestService(t)
	_, _ = service.Join(ctx, quizID, "u1", "Alice")

	submission := domain.AnswerSubmission{QuestionID: "file-0", Answer: "Paris"}
	if _, _, err := service.SubmitAnswer(ctx, quizID, "u1", submission); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, _, err := service.SubmitAnswer(ctx, quizID, "u1", submission); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}

	result, err := service.Result(ctx, quizID, "u1")
	if err != nil {
		t.Fatalf("result failed: %v", err)
	}
	if result.Score != 1 || result.Answered != 1 || result.TotalQuestions != 2 || result.Percentage != 50 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSubmitValidatesInput(t *testing.T) {
	ctx := context.Background()
	service, quizID := newTestService(t)
	_, _ = service.Join(ctx, quizID, "u1", "Alice")

	if _, _, err := service.SubmitAnswer(ctx, quizID, "u1", domain.AnswerSubmission{QuestionID: "file-0", Answer: "  "}); !errors.Is(err, domain.ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}
	if _, _, err := service.SubmitAnswer(ctx, quizID, "u1", domain.AnswerSubmission{QuestionID: "nope", Answer: "x"}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	service, quizID := newTestService(t)

	if _, err := service.Join(ctx, quizID, "u1", "Alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	ch, cancel, err := service.Subscribe(ctx, quizID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	<-ch // initial snapshot

	if _, _, err := service.SubmitAnswer(ctx, quizID, "u1", domain.AnswerSubmission{QuestionID: "file-0", Answer: "Paris"}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	update := <-ch
	if len(update.Entries) != 1 || update.Entries[0].Score != 1 {
		t.Fatalf("expected updated score 1, got %+v", update.Entries)
	}
}

func TestSubmitRequiresParticipant(t *testing.T) {
	ctx := context.Background()
	service, quizID := newTestService(t)

	_, _, err := service.SubmitAnswer(ctx, "quiz-unknown", "u1", domain.AnswerSubmission{QuestionID: "file-0", Answer: "Paris"})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session error, got %v", err)
	}

	_, _ = service.Join(ctx, quizID, "u1", "Alice")
	_, _, err = service.SubmitAnswer(ctx, quizID, "u2", domain.AnswerSubmission{QuestionID: "file-0", Answer: "Paris"})
	if !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected participant error, got %v", err)
	}
}

func TestJoinUnknownQuiz(t *testing.T) {
	service, _ := newTestService(t)
	if _, err := service.Join(context.Background(), "missing", "u1", "Alice"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestStartQuizWithoutBank(t *testing.T) {
	service := app.NewQuizService(memory.NewSessionStore(time.Minute), memory.NewQuizRepository(time.Minute), memory.NewBankStore())
	if _, err := service.StartQuiz(context.Background(), domain.QuizConfig{}); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

func TestStartQuizStoresQuiz(t *testing.T) {
	ctx := context.Background()
	service, quizID := newTestService(t)

	quiz, err := service.Quiz(ctx, quizID)
	if err != nil {
		t.Fatalf("load quiz: %v", err)
	}
	if quiz.Subject != domain.SubjectGeography || len(quiz.Questions) != 2 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
	for _, q := range quiz.Questions {
		if q.Subject != domain.SubjectGeography {
			t.Fatalf("expected only geography questions, got %+v", q)
		}
	}
}

func TestLeaveKeepsScore(t *testing.T) {
	ctx := context.Background()
	service, quizID := newTestService(t)
	_, _ = service.Join(ctx, quizID, "u1", "Alice")
	_, _ = service.Join(ctx, quizID, "u2", "Bob")

	submission := domain.AnswerSubmission{QuestionID: "file-0", Answer: "Paris"}
	if _, _, err := service.SubmitAnswer(ctx, quizID, "u1", submission); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	service.Leave(ctx, quizID, "u1")

	result, err := service.Result(ctx, quizID, "u1")
	if err != nil {
		t.Fatalf("result after leave: %v", err)
	}
	if result.Score != 1 || result.Answered != 1 {
		t.Fatalf("expected the tally to survive leaving, got %+v", result)
	}

	lb, err := service.Join(ctx, quizID, "u1", "Alice")
	if err != nil {
		t.Fatalf("rejoin failed: %v", err)
	}
	if lb.Entries[0].UserID != "u1" || lb.Entries[0].Score != 1 || lb.Entries[0].Answered != 1 || !lb.Entries[0].Connected {
		t.Fatalf("expected Alice back on top with her point, got %+v", lb.Entries)
	}
	if _, _, err := service.SubmitAnswer(ctx, quizID, "u1", submission); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered after rejoin, got %v", err)
	}
}

func TestResultAfterEveryoneLeft(t *testing.T) {
	ctx := context.Background()
	service, quizID := newTestService(t)
	_, _ = service.Join(ctx, quizID, "u1", "Alice")
	_, _, _ = service.SubmitAnswer(ctx, quizID, "u1", domain.AnswerSubmission{QuestionID: "file-1", Answer: "Nile"})
	service.Leave(ctx, quizID, "u1")

	lb, err := service.Join(ctx, quizID, "u2", "Bob")
	if err != nil {
		t.Fatalf("join after everyone left: %v", err)
	}
	for _, e := range lb.Entries {
		if e.UserID == "u1" && (e.Connected || e.Score != 1) {
			t.Fatalf("expected Alice listed as disconnected with 1 point, got %+v", e)
		}
	}
	if result, err := service.Result(ctx, quizID, "u1"); err != nil || result.Score != 1 {
		t.Fatalf("expected result to survive, got %+v err=%v", result, err)
	}
}

func TestFinishedQuizIsRecorded(t *testing.T) {
	ctx := context.Background()
	service, quizID := newTestService(t)
	results := memory.NewResultStore()
	service.WithResults(results)
	_, _ = service.Join(ctx, quizID, "u1", "Alice")

	_, _, _ = service.SubmitAnswer(ctx, quizID, "u1", domain.AnswerSubmission{QuestionID: "file-0", Answer: "Paris"})
	if history, _ := service.UserResults(ctx, "u1"); len(history) != 0 {
		t.Fatalf("expected nothing recorded mid-quiz, got %+v", history)
	}
	_, _, _ = service.SubmitAnswer(ctx, quizID, "u1", domain.AnswerSubmission{QuestionID: "file-1", Answer: "Amazon"})

	history, err := service.UserResults(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one finished result, got %+v", history)
	}
	got := history[0]
	if got.QuizID != quizID || got.DisplayName != "Alice" || got.Score != 1 || got.Percentage != 50 || got.Subject != domain.SubjectGeography || got.CompletedAt.IsZero() {
		t.Fatalf("unexpected result %+v", got)
	}

	hof, err := service.HallOfFame(ctx, 0)
	if err != nil {
		t.Fatalf("hall of fame: %v", err)
	}
	if len(hof.Players) != 1 || hof.Players[0].TotalScore != 1 || hof.Players[0].QuizzesPlayed != 1 {
		t.Fatalf("unexpected hall of fame %+v", hof)
	}
}

func TestStartQuizFallsBackToPresets(t *testing.T) {
	ctx := context.Background()
	presets := memory.NewStaticPresetLoader([]domain.Question{
		{ID: "preset-1", Text: "Capital of Japan?", Options: []string{"Tokyo", "Seoul"}, CorrectAnswer: "Tokyo", Subject: domain.SubjectGeography, Difficulty: domain.DifficultyEasy},
		{ID: "preset-2", Text: "Capital of Chad?", Options: []string{"Bamako", "N'Djamena"}, CorrectAnswer: "N'Djamena", Subject: domain.SubjectGeography, Difficulty: domain.DifficultyHard},
		{ID: "preset-3", Text: "2 + 3?", Options: []string{"5", "6"}, CorrectAnswer: "5", Subject: domain.SubjectMath, Difficulty: domain.DifficultyEasy},
	})
	banks := memory.NewBankStore()
	service := app.NewQuizService(memory.NewSessionStore(time.Minute), memory.NewQuizRepository(time.Minute), banks).WithPresets(presets)

	quiz, err := service.StartQuiz(ctx, domain.QuizConfig{Subject: domain.SubjectGeography, Difficulty: domain.DifficultyHard})
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].ID != "preset-2" {
		t.Fatalf("expected the hard geography preset, got %+v", quiz.Questions)
	}

	// a cleared bank falls back too
	_ = banks.SaveBank(ctx, testBank())
	_ = banks.ClearBank(ctx)
	if _, err := service.StartQuiz(ctx, domain.QuizConfig{Subject: domain.SubjectMath}); err != nil {
		t.Fatalf("start quiz after clear: %v", err)
	}

	// a published bank wins over the presets
	_ = banks.SaveBank(ctx, testBank())
	quiz, err = service.StartQuiz(ctx, domain.QuizConfig{Subject: domain.SubjectMath})
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].ID != "file-2" {
		t.Fatalf("expected the bank question, got %+v", quiz.Questions)
	}
}

func newTestService(t *testing.T) (*app.QuizService, string) {
	t.Helper()
	banks := memory.NewBankStore()
	if err := banks.SaveBank(context.Background(), testBank()); err != nil {
		t.Fatalf("seed bank: %v", err)
	}
	service := app.NewQuizService(memory.NewSessionStore(time.Minute), memory.NewQuizRepository(5*time.Minute), banks)
	quiz, err := service.StartQuiz(context.Background(), domain.QuizConfig{Subject: domain.SubjectGeography})
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	return service, quiz.ID
}

func testBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID:      "bank-1",
		Version: 1,
		Questions: []domain.Question{
			{
				ID:            "file-0",
				Text:          "Capital of France?",
				Options:       []string{"Paris", "Rome", "Madrid", "Berlin"},
				CorrectAnswer: "Paris",
				Explanation:   "Paris has been the capital since 987.",
				Subject:       domain.SubjectGeography,
			},
			{
				ID:            "file-1",
				Text:          "Longest river in Africa?",
				Options:       []string{"Nile", "Congo", "Niger", "Zambezi"},
				CorrectAnswer: "Nile",
				Subject:       domain.SubjectGeography,
			},
			{
				ID:            "file-2",
				Text:          "What is 2 + 2?",
				Options:       []string{"3", "4", "5", "6"},
				CorrectAnswer: "4",
				Subject:       domain.SubjectMath,
			},
		},
		ActiveSubjects: []domain.Subject{domain.SubjectGeography, domain.SubjectMath},
	}
}
