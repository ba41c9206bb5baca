package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BankBackend is the durable home of the global bank (e.g., Postgres).
type BankBackend interface {
	CurrentBank(ctx context.Context) (domain.QuestionBank, error)
	SaveBank(ctx context.Context, bank domain.QuestionBank) error
	ClearBank(ctx context.Context) error
}

const bankKey = "quiz:bank:current"

// BankRepository caches the global bank in Redis and falls back to the backend on a miss.
// The bank is stored as: SET quiz:bank:current {json} EX ttl
type BankRepository struct {
	client  *redis.Client
	backend BankBackend
	ttl     time.Duration
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewBankRepository(client *redis.Client, backend BankBackend, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client:  client,
		backend: backend,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) CurrentBank(ctx context.Context) (domain.QuestionBank, error) {
	if bank, ok := r.cached(ctx); ok {
		return bank, nil
	}

	result, err, _ := r.sf.Do(bankKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if bank, ok := r.cached(ctx); ok {
			return bank, nil
		}
		bank, err := r.backend.CurrentBank(ctx)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		r.fill(ctx, bank)
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

func (r *BankRepository) SaveBank(ctx context.Context, bank domain.QuestionBank) error {
	if err := r.backend.SaveBank(ctx, bank); err != nil {
		return err
	}
	r.fill(ctx, bank)
	return nil
}

func (r *BankRepository) ClearBank(ctx context.Context) error {
	if err := r.backend.ClearBank(ctx); err != nil {
		return err
	}
	if err := r.client.Del(ctx, bankKey).Err(); err != nil {
		return fmt.Errorf("drop cached bank: %w", err)
	}
	return nil
}

func (r *BankRepository) cached(ctx context.Context) (domain.QuestionBank, bool) {
	data, err := r.client.Get(ctx, bankKey).Bytes()
	if err != nil {
		return domain.QuestionBank{}, false
	}
	var bank domain.QuestionBank
	if err := json.Unmarshal(data, &bank); err != nil {
		return domain.QuestionBank{}, false
	}
	return bank, true
}

// fill is best effort; the backend stays the source of truth.
func (r *BankRepository) fill(ctx context.Context, bank domain.QuestionBank) {
	data, err := json.Marshal(bank)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, bankKey, data, r.ttlWithJitter()).Err()
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
