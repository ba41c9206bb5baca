package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"trivia-quiz-service/internal/domain"
)

func TestParseCommandPrintsQuestions(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "questions.csv")
	content := "Question;Option A;Option B;Option C;Option D;Correct Answer;Level\n" +
		"Largest planet?;Mars;Jupiter;Venus;Earth;B;hard\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "parse", file})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(out.Bytes(), &questions); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(questions))
	}
	q := questions[0]
	if q.ID != "file-0" || q.CorrectAnswer != "Jupiter" || q.Difficulty != domain.DifficultyHard {
		t.Fatalf("unexpected question: %+v", q)
	}
}

func TestParseCommandReportsDecodeErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "broken.xlsx")
	if err := os.WriteFile(file, []byte("PK\x03\x04not really a zip"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "parse", file})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected decode error")
	}
}
