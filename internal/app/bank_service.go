package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// QuestionParser turns an uploaded file into questions.
type QuestionParser interface {
	Parse(r io.Reader, filename string) ([]domain.Question, error)
}

// BankRepository stores the single global question bank.
type BankRepository interface {
	CurrentBank(ctx context.Context) (domain.QuestionBank, error)
	SaveBank(ctx context.Context, bank domain.QuestionBank) error
	ClearBank(ctx context.Context) error
}

// BankNotifier fans bank changes out to every connected client.
type BankNotifier interface {
	Publish(ctx context.Context, bank domain.QuestionBank) error
	Subscribe(ctx context.Context) (<-chan domain.QuestionBank, func(), error)
}

// BankService owns uploads of the global question bank.
type BankService struct {
	parser   QuestionParser
	banks    BankRepository
	notifier BankNotifier
	now      func() time.Time
	newID    func() string
}

func NewBankService(parser QuestionParser, banks BankRepository, notifier BankNotifier) *BankService {
	return &BankService{
		parser:   parser,
		banks:    banks,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Import parses a file without touching the global bank.
func (s *BankService) Import(_ context.Context, filename string, r io.Reader) ([]domain.Question, error) {
	return s.parser.Parse(r, filename)
}

// Publish parses a file and makes it the global bank. The last publish wins.
func (s *BankService) Publish(ctx context.Context, actor, filename string, r io.Reader) (domain.QuestionBank, error) {
	questions, err := s.parser.Parse(r, filename)
	if err != nil {
		return domain.QuestionBank{}, err
	}

	var version int64
	prev, err := s.banks.CurrentBank(ctx)
	switch {
	case err == nil:
		version = prev.Version
	case !errors.Is(err, domain.ErrBankNotFound):
		return domain.QuestionBank{}, fmt.Errorf("load current bank: %w", err)
	}

	bank := domain.QuestionBank{
		ID:             s.newID(),
		FileName:       filename,
		Questions:      questions,
		ActiveSubjects: activeSubjects(questions),
		UpdatedBy:      actor,
		UpdatedAt:      s.now().UTC(),
		Version:        version + 1,
	}
	if err := s.banks.SaveBank(ctx, bank); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("save bank: %w", err)
	}
	if err := s.notifier.Publish(ctx, bank); err != nil {
		log.Printf("bank %s saved but broadcast failed: %v", bank.ID, err)
	}
	log.Printf("question bank v%d published by %s: %d questions from %s", bank.Version, actor, len(questions), filename)
	return bank, nil
}

// Current returns the global bank or domain.ErrBankNotFound.
func (s *BankService) Current(ctx context.Context) (domain.QuestionBank, error) {
	bank, err := s.banks.CurrentBank(ctx)
	if err != nil {
		return domain.QuestionBank{}, err
	}
	if bank.IsEmpty() {
		return domain.QuestionBank{}, domain.ErrBankNotFound
	}
	return bank, nil
}

// Clear drops the global bank. New quizzes then draw from the built-in presets.
func (s *BankService) Clear(ctx context.Context, actor string) error {
	if err := s.banks.ClearBank(ctx); err != nil {
		return fmt.Errorf("clear bank: %w", err)
	}
	cleared := domain.QuestionBank{UpdatedBy: actor, UpdatedAt: s.now().UTC()}
	if err := s.notifier.Publish(ctx, cleared); err != nil {
		log.Printf("bank cleared but broadcast failed: %v", err)
	}
	log.Printf("question bank cleared by %s", actor)
	return nil
}

// Subscribe streams bank changes, starting with the current bank if there is one.
// The caller must invoke the returned cancel function.
func (s *BankService) Subscribe(ctx context.Context) (<-chan domain.QuestionBank, func(), error) {
	updates, cancel, err := s.notifier.Subscribe(ctx)
	if err != nil {
		return nil, nil, err
	}

	out := make(chan domain.QuestionBank, 8)
	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			cancel()
		})
	}

	go func() {
		defer close(out)
		if bank, err := s.Current(ctx); err == nil {
			select {
			case out <- bank:
			case <-done:
				return
			}
		}
		for {
			select {
			case bank, ok := <-updates:
				if !ok {
					return
				}
				select {
				case out <- bank:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()
	return out, stop, nil
}

// activeSubjects lists the subjects present in the file, or every preset when none are tagged.
func activeSubjects(questions []domain.Question) []domain.Subject {
	seen := make(map[domain.Subject]bool)
	for _, q := range questions {
		if q.Subject != "" {
			seen[q.Subject] = true
		}
	}
	if len(seen) == 0 {
		out := make([]domain.Subject, len(domain.Subjects))
		copy(out, domain.Subjects)
		return out
	}
	out := make([]domain.Subject, 0, len(seen))
	for _, subject := range domain.Subjects {
		if seen[subject] {
			out = append(out, subject)
		}
	}
	return out
}
