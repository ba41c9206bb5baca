package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// QuizRepository keeps started quizzes in process until their TTL runs out.
type QuizRepository struct {
	ttl   time.Duration
	clock func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) SaveQuiz(_ context.Context, quiz domain.Quiz) error {
	now := r.clock()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictExpiredLocked(now)
	r.cache[quiz.ID] = cachedQuiz{quiz: quiz, expiresAt: now.Add(r.ttlWithJitter())}
	return nil
}

func (r *QuizRepository) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[quizID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return entry.quiz, nil
}

func (r *QuizRepository) evictExpiredLocked(now time.Time) {
	for id, entry := range r.cache {
		if !entry.expiresAt.After(now) {
			delete(r.cache, id)
		}
	}
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		// no TTL configured: keep for a day
		return 24 * time.Hour
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
