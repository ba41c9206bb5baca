package memory

import (
	"context"
	"sort"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// ResultStore keeps finished quiz results in process. History is lost on restart.
type ResultStore struct {
	mu      sync.RWMutex
	results []domain.QuizResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// SaveResult appends a result. Saving the same quiz and user again replaces it.
func (s *ResultStore) SaveResult(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.results {
		if r.QuizID == result.QuizID && r.UserID == result.UserID {
			s.results[i] = result
			return nil
		}
	}
	s.results = append(s.results, result)
	return nil
}

// UserResults returns the user's results, newest first.
func (s *ResultStore) UserResults(_ context.Context, userID string) ([]domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizResult, 0)
	for i := len(s.results) - 1; i >= 0; i-- {
		if s.results[i].UserID == userID {
			out = append(out, s.results[i])
		}
	}
	return out, nil
}

func (s *ResultStore) HallOfFame(_ context.Context, limit int) (domain.HallOfFame, error) {
	s.mu.RLock()
	all := make([]domain.QuizResult, len(s.results))
	copy(all, s.results)
	s.mu.RUnlock()

	byUser := make(map[string]*domain.PlayerStanding)
	for _, r := range all {
		p, ok := byUser[r.UserID]
		if !ok {
			p = &domain.PlayerStanding{UserID: r.UserID}
			byUser[r.UserID] = p
		}
		p.DisplayName = r.DisplayName
		p.TotalScore += r.Score
		p.QuizzesPlayed++
	}
	players := make([]domain.PlayerStanding, 0, len(byUser))
	for _, p := range byUser {
		players = append(players, *p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].TotalScore != players[j].TotalScore {
			return players[i].TotalScore > players[j].TotalScore
		}
		return players[i].UserID < players[j].UserID
	})

	// earlier results win ties
	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })

	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	for i := range players {
		players[i].Rank = i + 1
	}
	return domain.HallOfFame{Players: players, TopScores: all}, nil
}
