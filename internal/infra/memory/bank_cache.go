package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// BankBackend is the durable home of the global bank (e.g., Postgres).
type BankBackend interface {
	CurrentBank(ctx context.Context) (domain.QuestionBank, error)
	SaveBank(ctx context.Context, bank domain.QuestionBank) error
	ClearBank(ctx context.Context) error
}

const bankCacheKey = "current"

// BankCache caches the current bank with TTL to avoid repeated DB hits.
// Writes go through to the backend and refresh the cache.
type BankCache struct {
	backend BankBackend
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu      sync.RWMutex
	entry   *domain.QuestionBank
	expires time.Time
}

func NewBankCache(backend BankBackend, ttl time.Duration) *BankCache {
	return &BankCache{
		backend: backend,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *BankCache) CurrentBank(ctx context.Context) (domain.QuestionBank, error) {
	if bank, ok := c.cached(c.clock()); ok {
		return bank, nil
	}

	result, err, _ := c.sf.Do(bankCacheKey, func() (interface{}, error) {
		if bank, ok := c.cached(c.clock()); ok {
			return bank, nil
		}
		bank, err := c.backend.CurrentBank(ctx)
		if err != nil {
			return domain.QuestionBank{}, err
		}
		c.store(bank)
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

func (c *BankCache) SaveBank(ctx context.Context, bank domain.QuestionBank) error {
	if err := c.backend.SaveBank(ctx, bank); err != nil {
		return err
	}
	c.store(bank)
	return nil
}

func (c *BankCache) ClearBank(ctx context.Context) error {
	if err := c.backend.ClearBank(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
	return nil
}

func (c *BankCache) cached(now time.Time) (domain.QuestionBank, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil || !c.expires.After(now) {
		return domain.QuestionBank{}, false
	}
	return *c.entry, true
}

func (c *BankCache) store(bank domain.QuestionBank) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &bank
	c.expires = c.clock().Add(c.ttlWithJitter())
}

// ttlWithJitter is only called with c.mu held, which also guards rnd.
func (c *BankCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
