package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/importer"
	"trivia-quiz-service/internal/infra/memory"
)

const bankCSV = `Question,A,B,C,D,Answer,Topic
Capital of France?,Paris,Rome,Madrid,Berlin,A,Geography
Water boils at sea level at?,90C,100C,110C,120C,B,Science
`

func newBankService() (*app.BankService, *memory.BankStore) {
	store := memory.NewBankStore()
	return app.NewBankService(importer.NewNormalizer(importer.DefaultOptions()), store, memory.NewBankNotifier()), store
}

func TestImportDoesNotPublish(t *testing.T) {
	ctx := context.Background()
	service, store := newBankService()

	questions, err := service.Import(ctx, "bank.csv", strings.NewReader(bankCSV))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if _, err := store.CurrentBank(ctx); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected no bank after import, got %v", err)
	}
}

func TestPublishVersionsAndSubjects(t *testing.T) {
	ctx := context.Background()
	service, _ := newBankService()

	first, err := service.Publish(ctx, "alice", "bank.csv", strings.NewReader(bankCSV))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if first.Version != 1 || first.UpdatedBy != "alice" || first.FileName != "bank.csv" || first.ID == "" {
		t.Fatalf("unexpected bank: %+v", first)
	}
	want := []domain.Subject{domain.SubjectGeography, domain.SubjectScience}
	if len(first.ActiveSubjects) != 2 || first.ActiveSubjects[0] != want[0] || first.ActiveSubjects[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, first.ActiveSubjects)
	}

	second, err := service.Publish(ctx, "bob", "bank2.csv", strings.NewReader(bankCSV))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if second.Version != 2 || second.ID == first.ID {
		t.Fatalf("expected a new v2 bank, got %+v", second)
	}

	current, err := service.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.UpdatedBy != "bob" {
		t.Fatalf("expected last publish to win, got %+v", current)
	}
}

func TestPublishUntaggedFileActivatesAllSubjects(t *testing.T) {
	service, _ := newBankService()
	content := "Question,A,B,Answer\nPick one?,Yes,No,Yes\n"

	bank, err := service.Publish(context.Background(), "admin", "plain.csv", strings.NewReader(content))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(bank.ActiveSubjects) != len(domain.Subjects) {
		t.Fatalf("expected every preset subject, got %v", bank.ActiveSubjects)
	}
}

func TestPublishRejectsBadFileAndKeepsBank(t *testing.T) {
	ctx := context.Background()
	service, _ := newBankService()
	if _, err := service.Publish(ctx, "admin", "bank.csv", strings.NewReader(bankCSV)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_, err := service.Publish(ctx, "admin", "empty.csv", strings.NewReader("Question\nNo options here\n"))
	if !errors.Is(err, domain.ErrNoValidQuestions) {
		t.Fatalf("expected ErrNoValidQuestions, got %v", err)
	}
	current, err := service.Current(ctx)
	if err != nil || current.Version != 1 {
		t.Fatalf("expected v1 to survive a failed publish, got %+v %v", current, err)
	}
}

func TestSubscribeSeesCurrentThenChanges(t *testing.T) {
	ctx := context.Background()
	service, _ := newBankService()
	if _, err := service.Publish(ctx, "admin", "bank.csv", strings.NewReader(bankCSV)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	updates, cancel, err := service.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if bank := next(t, updates); bank.Version != 1 {
		t.Fatalf("expected current bank first, got v%d", bank.Version)
	}

	if err := service.Clear(ctx, "admin"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if bank := next(t, updates); !bank.IsEmpty() {
		t.Fatalf("expected empty bank after clear, got %+v", bank)
	}
	if _, err := service.Current(ctx); !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound after clear, got %v", err)
	}
}

func next(t *testing.T, ch <-chan domain.QuestionBank) domain.QuestionBank {
	t.Helper()
	select {
	case bank, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed")
		}
		return bank
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for bank")
	}
	return domain.QuestionBank{}
}
