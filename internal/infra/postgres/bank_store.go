package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"trivia-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// BankStore keeps every published bank as a JSONB row. The highest version is current.
type BankStore struct {
	pool *pgxpool.Pool
}

func NewBankStore(pool *pgxpool.Pool) *BankStore {
	return &BankStore{pool: pool}
}

func (s *BankStore) CurrentBank(ctx context.Context) (domain.QuestionBank, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM question_banks ORDER BY version DESC LIMIT 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionBank{}, domain.ErrBankNotFound
	}
	if err != nil {
		return domain.QuestionBank{}, fmt.Errorf("load bank: %w", err)
	}
	var bank domain.QuestionBank
	if err := json.Unmarshal(raw, &bank); err != nil {
		return domain.QuestionBank{}, fmt.Errorf("unmarshal bank: %w", err)
	}
	return bank, nil
}

func (s *BankStore) SaveBank(ctx context.Context, bank domain.QuestionBank) error {
	data, err := json.Marshal(bank)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO question_banks (id, version, file_name, updated_by, updated_at, data)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		ON CONFLICT (version) DO UPDATE SET
			id = EXCLUDED.id,
			file_name = EXCLUDED.file_name,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at,
			data = EXCLUDED.data`,
		bank.ID, bank.Version, bank.FileName, bank.UpdatedBy, bank.UpdatedAt, string(data))
	if err != nil {
		return fmt.Errorf("save bank: %w", err)
	}
	return nil
}

// ClearBank drops the bank history so the next read reports no bank.
func (s *BankStore) ClearBank(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM question_banks`); err != nil {
		return fmt.Errorf("clear bank: %w", err)
	}
	return nil
}
