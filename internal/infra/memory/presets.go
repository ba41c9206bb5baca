package memory

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"trivia-quiz-service/internal/domain"
)

//go:embed presets/questions.json
var presetQuestionsJSON []byte

// PresetLoader serves the built-in questions used when no bank is published.
type PresetLoader struct {
	raw []byte

	once      sync.Once
	questions []domain.Question
	err       error
}

// NewPresetLoader reads the embedded preset set.
func NewPresetLoader() *PresetLoader {
	return &PresetLoader{raw: presetQuestionsJSON}
}

// NewStaticPresetLoader serves a fixed set instead of the embedded one.
func NewStaticPresetLoader(questions []domain.Question) *PresetLoader {
	l := &PresetLoader{questions: questions}
	l.once.Do(func() {})
	return l
}

func (l *PresetLoader) PresetQuestions(_ context.Context) ([]domain.Question, error) {
	l.once.Do(func() {
		if err := json.Unmarshal(l.raw, &l.questions); err != nil {
			l.err = fmt.Errorf("decode preset questions: %w", err)
		}
	})
	if l.err != nil {
		return nil, l.err
	}
	if len(l.questions) == 0 {
		return nil, domain.ErrBankNotFound
	}
	return l.questions, nil
}
