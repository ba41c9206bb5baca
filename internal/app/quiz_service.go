package app

import (
	"context"
	"errors"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(quizID string) *Session
	Get(quizID string) (*Session, bool)
	// Sweep drops sessions nobody is connected to once they outlive the quiz.
	Sweep()
}

// PresetSource supplies the built-in questions played when no bank is published.
type PresetSource interface {
	PresetQuestions(ctx context.Context) ([]domain.Question, error)
}

// ResultRepository keeps finished quiz results for history and the all-time leaderboard.
type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.QuizResult) error
	UserResults(ctx context.Context, userID string) ([]domain.QuizResult, error)
	HallOfFame(ctx context.Context, limit int) (domain.HallOfFame, error)
}

// QuizRepository keeps the questions drawn for each started quiz.
type QuizRepository interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// DefaultHallOfFameSize is how many players and top scores the all-time board lists.
const DefaultHallOfFameSize = 10

// QuizService contains the core quiz use cases.
type QuizService struct {
	sessions     SessionRepository
	quizzes      QuizRepository
	banks        BankRepository
	presets      PresetSource
	results      ResultRepository
	defaultCount int
	now          func() time.Time
	newID        func() string

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizService(store SessionRepository, quizzes QuizRepository, banks BankRepository) *QuizService {
	return &QuizService{
		sessions:     store,
		quizzes:      quizzes,
		banks:        banks,
		defaultCount: domain.DefaultQuestionCount,
		now:          time.Now,
		newID:        uuid.NewString,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithDefaultQuestionCount sets the count used when a config does not ask for one.
func (s *QuizService) WithDefaultQuestionCount(n int) *QuizService {
	if n > 0 {
		s.defaultCount = n
	}
	return s
}

// WithPresets sets the questions played while no bank is published.
func (s *QuizService) WithPresets(presets PresetSource) *QuizService {
	s.presets = presets
	return s
}

// WithResults enables the result history. Without it finished quizzes are not kept.
func (s *QuizService) WithResults(results ResultRepository) *QuizService {
	s.results = results
	return s
}

// StartQuiz draws questions from the global bank and opens a session for them.
// While no bank is published the built-in presets are used instead.
func (s *QuizService) StartQuiz(ctx context.Context, cfg domain.QuizConfig) (domain.Quiz, error) {
	pool, err := s.questionPool(ctx)
	if err != nil {
		return domain.Quiz{}, err
	}

	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = s.defaultCount
	}

	s.rndMu.Lock()
	questions, err := SelectQuestions(pool, cfg, s.rnd.Shuffle)
	s.rndMu.Unlock()
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz := domain.Quiz{
		ID:         s.newID(),
		Subject:    cfg.Subject,
		Difficulty: cfg.Difficulty,
		Questions:  questions,
		CreatedAt:  s.now(),
	}
	if err := s.quizzes.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	s.sessions.GetOrCreate(quiz.ID)
	return quiz, nil
}

func (s *QuizService) questionPool(ctx context.Context) ([]domain.Question, error) {
	bank, err := s.banks.CurrentBank(ctx)
	switch {
	case err == nil && !bank.IsEmpty():
		return bank.Questions, nil
	case err != nil && !errors.Is(err, domain.ErrBankNotFound):
		return nil, err
	case s.presets == nil:
		return nil, domain.ErrBankNotFound
	}
	return s.presets.PresetQuestions(ctx)
}

// Quiz returns a started quiz, including its answer key.
func (s *QuizService) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// Join registers or refreshes a participant in a quiz session.
func (s *QuizService) Join(ctx context.Context, quizID, userID, displayName string) (domain.Leaderboard, error) {
	// users cannot join unknown or expired quizzes
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Leaderboard{}, err
	}

	session := s.sessions.GetOrCreate(quizID)
	return session.join(userID, displayName), nil
}

// SubmitAnswer records an answer for a participant and updates the leaderboard.
func (s *QuizService) SubmitAnswer(ctx context.Context, quizID, userID string, submission domain.AnswerSubmission) (domain.Leaderboard, domain.AnswerResult, error) {
	session, ok := s.sessions.Get(quizID)
	if !ok {
		return domain.Leaderboard{}, domain.AnswerResult{}, domain.ErrSessionNotFound
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Leaderboard{}, domain.AnswerResult{}, err
	}

	question, correct, err := scoreSubmission(quiz, submission)
	if err != nil {
		return domain.Leaderboard{}, domain.AnswerResult{}, err
	}

	lb, total, answered, err := session.record(userID, question.ID, correct)
	if err != nil {
		return domain.Leaderboard{}, domain.AnswerResult{}, err
	}
	if answered == len(quiz.Questions) {
		s.saveFinished(ctx, quiz, session, userID)
	}

	result := domain.AnswerResult{
		QuestionID:    question.ID,
		Correct:       correct,
		TotalScore:    total,
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
	}
	if correct {
		result.Awarded = 1
	}
	return lb, result, nil
}

// Result returns a participant's tally for a quiz. It stays available after
// the participant disconnects.
func (s *QuizService) Result(ctx context.Context, quizID, userID string) (domain.QuizResult, error) {
	session, ok := s.sessions.Get(quizID)
	if !ok {
		return domain.QuizResult{}, domain.ErrSessionNotFound
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	return resultFor(quiz, session, userID)
}

// UserResults lists a user's finished quizzes, newest first.
func (s *QuizService) UserResults(ctx context.Context, userID string) ([]domain.QuizResult, error) {
	if s.results == nil {
		return []domain.QuizResult{}, nil
	}
	return s.results.UserResults(ctx, userID)
}

// HallOfFame ranks users by total score over finished quizzes and lists the
// best single results, limit of each.
func (s *QuizService) HallOfFame(ctx context.Context, limit int) (domain.HallOfFame, error) {
	if s.results == nil {
		return domain.HallOfFame{Players: []domain.PlayerStanding{}, TopScores: []domain.QuizResult{}}, nil
	}
	if limit <= 0 {
		limit = DefaultHallOfFameSize
	}
	return s.results.HallOfFame(ctx, limit)
}

func (s *QuizService) saveFinished(ctx context.Context, quiz domain.Quiz, session *Session, userID string) {
	if s.results == nil {
		return
	}
	result, err := resultFor(quiz, session, userID)
	if err != nil {
		return
	}
	result.CompletedAt = s.now()
	if err := s.results.SaveResult(ctx, result); err != nil {
		log.Printf("save result quiz=%s user=%s: %v", quiz.ID, userID, err)
	}
}

func resultFor(quiz domain.Quiz, session *Session, userID string) (domain.QuizResult, error) {
	p, answered, err := session.tally(userID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	result := domain.QuizResult{
		QuizID:         quiz.ID,
		UserID:         userID,
		DisplayName:    p.DisplayName,
		Subject:        quiz.Subject,
		Difficulty:     quiz.Difficulty,
		Score:          p.Score,
		Answered:       answered,
		TotalQuestions: len(quiz.Questions),
	}
	if result.TotalQuestions > 0 {
		result.Percentage = math.Round(float64(p.Score) / float64(result.TotalQuestions) * 100)
	}
	return result, nil
}

// Subscribe returns a channel that receives leaderboard updates for a quiz.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, quizID string) (<-chan domain.Leaderboard, func(), error) {
	session, ok := s.sessions.Get(quizID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Leave disconnects a participant. Their score stays in the session so a
// rejoin resumes it and Result still answers.
func (s *QuizService) Leave(_ context.Context, quizID, userID string) {
	session, ok := s.sessions.Get(quizID)
	if !ok {
		return
	}
	session.leave(userID)
	if session.IsEmpty() {
		s.sessions.Sweep()
	}
}

// scoreSubmission finds the question and compares the answer to its option text.
func scoreSubmission(quiz domain.Quiz, submission domain.AnswerSubmission) (domain.Question, bool, error) {
	for _, q := range quiz.Questions {
		if q.ID != submission.QuestionID {
			continue
		}
		answer := strings.TrimSpace(submission.Answer)
		if answer == "" {
			return domain.Question{}, false, domain.ErrEmptyAnswer
		}
		return q, strings.EqualFold(answer, strings.TrimSpace(q.CorrectAnswer)), nil
	}
	return domain.Question{}, false, domain.ErrQuestionNotFound
}
