package redis

import (
	"context"
	"sync"
	"time"

	"trivia-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps live sessions in process and marks each one in Redis
// (quiz:session:{quizID}) so operators can see which quizzes are running.
// Leaderboard fan-out stays local to the instance that owns the socket.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(quizID string) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[quizID]; ok {
		s.mark(quizID)
		return session
	}
	s.evictIdleLocked()
	session := app.NewSessionWithClock(quizID, s.clock)
	s.sessions[quizID] = session
	s.mark(quizID)
	return session
}

func (s *SessionStore) Get(quizID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[quizID]
	return session, ok
}

// Sweep drops sessions with nobody connected once they are older than ttl.
func (s *SessionStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictIdleLocked()
}

// mark refreshes the liveness key; best effort.
func (s *SessionStore) mark(quizID string) {
	_ = s.client.Set(context.Background(), s.key(quizID), "1", s.ttl).Err()
}

func (s *SessionStore) dropLocked(quizID string) {
	delete(s.sessions, quizID)
	_ = s.client.Del(context.Background(), s.key(quizID)).Err()
}

func (s *SessionStore) evictIdleLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.clock().Add(-s.ttl)
	for id, session := range s.sessions {
		if session.IsEmpty() && session.CreatedAt().Before(cutoff) {
			s.dropLocked(id)
		}
	}
}

func (s *SessionStore) key(quizID string) string {
	return "quiz:session:" + quizID
}
