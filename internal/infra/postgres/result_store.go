package postgres

import (
	"context"
	"fmt"

	"trivia-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore keeps finished quiz results, one row per quiz and user.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

const resultColumns = `quiz_id, user_id, display_name, subject, difficulty, score, answered, total_questions, percentage, completed_at`

func (s *ResultStore) SaveResult(ctx context.Context, r domain.QuizResult) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_results (`+resultColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (quiz_id, user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			score = EXCLUDED.score,
			answered = EXCLUDED.answered,
			total_questions = EXCLUDED.total_questions,
			percentage = EXCLUDED.percentage,
			completed_at = EXCLUDED.completed_at`,
		r.QuizID, r.UserID, r.DisplayName, string(r.Subject), string(r.Difficulty),
		r.Score, r.Answered, r.TotalQuestions, r.Percentage, r.CompletedAt)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (s *ResultStore) UserResults(ctx context.Context, userID string) ([]domain.QuizResult, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+resultColumns+` FROM quiz_results
		WHERE user_id = $1 ORDER BY completed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return scanResults(rows)
}

func (s *ResultStore) HallOfFame(ctx context.Context, limit int) (domain.HallOfFame, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id,
		       (array_agg(display_name ORDER BY completed_at DESC))[1],
		       SUM(score)::int,
		       COUNT(*)::int
		FROM quiz_results
		GROUP BY user_id
		ORDER BY SUM(score) DESC, user_id
		LIMIT $1`, limit)
	if err != nil {
		return domain.HallOfFame{}, fmt.Errorf("rank players: %w", err)
	}
	players := make([]domain.PlayerStanding, 0, limit)
	for rows.Next() {
		p := domain.PlayerStanding{Rank: len(players) + 1}
		if err := rows.Scan(&p.UserID, &p.DisplayName, &p.TotalScore, &p.QuizzesPlayed); err != nil {
			rows.Close()
			return domain.HallOfFame{}, fmt.Errorf("scan standing: %w", err)
		}
		players = append(players, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.HallOfFame{}, fmt.Errorf("rank players: %w", err)
	}

	rows, err = s.pool.Query(ctx, `SELECT `+resultColumns+` FROM quiz_results
		ORDER BY score DESC, completed_at LIMIT $1`, limit)
	if err != nil {
		return domain.HallOfFame{}, fmt.Errorf("load top scores: %w", err)
	}
	top, err := scanResults(rows)
	if err != nil {
		return domain.HallOfFame{}, err
	}
	return domain.HallOfFame{Players: players, TopScores: top}, nil
}

func scanResults(rows pgx.Rows) ([]domain.QuizResult, error) {
	defer rows.Close()
	out := make([]domain.QuizResult, 0)
	for rows.Next() {
		var (
			r                   domain.QuizResult
			subject, difficulty string
		)
		if err := rows.Scan(&r.QuizID, &r.UserID, &r.DisplayName, &subject, &difficulty,
			&r.Score, &r.Answered, &r.TotalQuestions, &r.Percentage, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Subject = domain.Subject(subject)
		r.Difficulty = domain.Difficulty(difficulty)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return out, nil
}
