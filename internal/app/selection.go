package app

import "trivia-quiz-service/internal/domain"

// SelectQuestions narrows the bank to the requested quiz.
//
// The subject filter applies only when some question in the bank is subject
// tagged, and the difficulty filter only when some remaining question is
// difficulty tagged. An empty subject or difficulty in cfg means any. The pool
// is then shuffled and cut to the requested count, clamped to 1..domain.MaxQuestionCount.
func SelectQuestions(bank []domain.Question, cfg domain.QuizConfig, shuffle func(n int, swap func(i, j int))) ([]domain.Question, error) {
	pool := bank

	if cfg.Subject != "" && anyQuestion(pool, func(q domain.Question) bool { return q.Subject != "" }) {
		pool = filterQuestions(pool, func(q domain.Question) bool { return q.Subject == cfg.Subject })
	}
	if cfg.Difficulty != "" && anyQuestion(pool, func(q domain.Question) bool { return q.Difficulty != "" }) {
		pool = filterQuestions(pool, func(q domain.Question) bool { return q.Difficulty == cfg.Difficulty })
	}
	if len(pool) == 0 {
		return nil, domain.ErrNoMatchingQuestions
	}

	out := make([]domain.Question, len(pool))
	copy(out, pool)
	if shuffle != nil {
		shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}

	count := cfg.QuestionCount
	if count <= 0 {
		count = domain.DefaultQuestionCount
	}
	if count > domain.MaxQuestionCount {
		count = domain.MaxQuestionCount
	}
	if count < len(out) {
		out = out[:count]
	}
	return out, nil
}

func anyQuestion(qs []domain.Question, pred func(domain.Question) bool) bool {
	for _, q := range qs {
		if pred(q) {
			return true
		}
	}
	return false
}

func filterQuestions(qs []domain.Question, keep func(domain.Question) bool) []domain.Question {
	out := make([]domain.Question, 0, len(qs))
	for _, q := range qs {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}
