package app

import (
	"sort"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
)

// Session is the live state of one started quiz: who is playing, what they
// scored, and who is watching the leaderboard.
type Session struct {
	quizID    string
	createdAt time.Time
	now       func() time.Time

	mu       sync.RWMutex
	players  map[string]*domain.Participant
	watchers map[chan domain.Leaderboard]struct{}
}

// NewSession opens a session on the wall clock.
func NewSession(quizID string) *Session {
	return NewSessionWithClock(quizID, time.Now)
}

// NewSessionWithClock lets stores and tests control timestamps.
func NewSessionWithClock(quizID string, now func() time.Time) *Session {
	return &Session{
		quizID:    quizID,
		createdAt: now(),
		now:       now,
		players:   make(map[string]*domain.Participant),
		watchers:  make(map[chan domain.Leaderboard]struct{}),
	}
}

// CreatedAt is when the session was opened.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// IsEmpty reports whether no player is connected. Players who left still
// hold their tallies until the store evicts the session.
func (s *Session) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		if p.Connections > 0 {
			return false
		}
	}
	return true
}

// join adds a player, or reconnects one under a possibly new name. Scores and
// answered questions survive a rejoin.
func (s *Session) join(userID, displayName string) domain.Leaderboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[userID]
	if !ok {
		p = &domain.Participant{UserID: userID, Answered: make(map[string]bool), LastUpdated: s.now()}
		s.players[userID] = p
	}
	p.DisplayName = displayName
	p.Connections++
	return s.publishLocked()
}

// record scores one answer and returns the new score and answered count.
// A question counts once per player, across reconnects too.
func (s *Session) record(userID, questionID string, correct bool) (domain.Leaderboard, int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[userID]
	if !ok {
		return domain.Leaderboard{}, 0, 0, domain.ErrParticipantNotFound
	}
	if p.Answered[questionID] {
		return domain.Leaderboard{}, p.Score, len(p.Answered), domain.ErrAlreadyAnswered
	}
	p.Answered[questionID] = true
	if correct {
		p.Score++
	}
	p.LastUpdated = s.now()
	return s.publishLocked(), p.Score, len(p.Answered), nil
}

// tally returns a copy of a player's name, score and answered count.
func (s *Session) tally(userID string) (domain.Participant, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[userID]
	if !ok {
		return domain.Participant{}, 0, domain.ErrParticipantNotFound
	}
	return domain.Participant{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Score:       p.Score,
		LastUpdated: p.LastUpdated,
		Connections: p.Connections,
	}, len(p.Answered), nil
}

// leave closes one of the player's connections. The tally stays.
func (s *Session) leave(userID string) domain.Leaderboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[userID]; ok && p.Connections > 0 {
		p.Connections--
	}
	return s.publishLocked()
}

// subscribe registers a watcher and primes it with the current standings.
func (s *Session) subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	ch <- s.standingsLocked()
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, ch)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// publishLocked computes the standings and hands them to every watcher.
// A watcher that fell behind loses its oldest pending update, never the newest.
func (s *Session) publishLocked() domain.Leaderboard {
	lb := s.standingsLocked()
	for ch := range s.watchers {
		for {
			select {
			case ch <- lb:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
	return lb
}

// standingsLocked ranks players by score, then by who got there first, then by name.
func (s *Session) standingsLocked() domain.Leaderboard {
	ranked := make([]*domain.Participant, 0, len(s.players))
	for _, p := range s.players {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch {
		case a.Score != b.Score:
			return a.Score > b.Score
		case !a.LastUpdated.Equal(b.LastUpdated):
			return a.LastUpdated.Before(b.LastUpdated)
		default:
			return a.DisplayName < b.DisplayName
		}
	})

	entries := make([]domain.LeaderboardEntry, len(ranked))
	for i, p := range ranked {
		entries[i] = domain.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Answered:    len(p.Answered),
			Connected:   p.Connections > 0,
		}
	}
	return domain.Leaderboard{QuizID: s.quizID, Entries: entries, UpdatedAt: s.now()}
}
