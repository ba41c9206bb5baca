package memory

import (
	"context"
	"errors"
	"testing"

	"trivia-quiz-service/internal/domain"
)

func TestPresetLoaderCoversEverySubject(t *testing.T) {
	questions, err := NewPresetLoader().PresetQuestions(context.Background())
	if err != nil {
		t.Fatalf("load presets: %v", err)
	}

	bySubject := make(map[domain.Subject]int)
	ids := make(map[string]bool)
	for _, q := range questions {
		if ids[q.ID] {
			t.Fatalf("duplicate preset id %q", q.ID)
		}
		ids[q.ID] = true
		bySubject[q.Subject]++

		if q.Text == "" || len(q.Options) < 2 || q.Difficulty == "" {
			t.Fatalf("incomplete preset question: %+v", q)
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
			}
		}
		if !found {
			t.Fatalf("answer %q is not an option of %q", q.CorrectAnswer, q.ID)
		}
	}
	for _, subject := range domain.Subjects {
		if bySubject[subject] == 0 {
			t.Fatalf("no preset questions for %s", subject)
		}
	}
}

func TestStaticPresetLoader(t *testing.T) {
	if _, err := NewStaticPresetLoader(nil).PresetQuestions(context.Background()); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}
