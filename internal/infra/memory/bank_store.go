package memory

import (
	"context"
	"sync"

	"trivia-quiz-service/internal/domain"
)

// BankStore holds the global question bank in process.
type BankStore struct {
	mu   sync.RWMutex
	bank *domain.QuestionBank
}

func NewBankStore() *BankStore {
	return &BankStore{}
}

func (s *BankStore) CurrentBank(_ context.Context) (domain.QuestionBank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bank == nil {
		return domain.QuestionBank{}, domain.ErrBankNotFound
	}
	return *s.bank, nil
}

func (s *BankStore) SaveBank(_ context.Context, bank domain.QuestionBank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bank = &bank
	return nil
}

func (s *BankStore) ClearBank(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bank = nil
	return nil
}
